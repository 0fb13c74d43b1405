package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	HTTP struct {
		PoolSize       int     `yaml:"pool_size"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		BackoffMillis  int     `yaml:"backoff_millis"`
		Retries        int     `yaml:"retries"`
		HostRPS        float64 `yaml:"host_rps"`
		UserAgent      string  `yaml:"user_agent"`
	} `yaml:"http"`

	Scrape struct {
		Parallel        int      `yaml:"parallel"`
		IntervalHours   int      `yaml:"interval_hours"`
		MaxKeywords     int      `yaml:"max_keywords"`
		USOnly          bool     `yaml:"us_only"`
		Verbose         bool     `yaml:"verbose"`
		SearchTerms     []string `yaml:"search_terms"`
		RefreshParallel int      `yaml:"refresh_parallel"`

		// RefreshIntervalHours schedules the careers-URL refresh pass.
		// Zero leaves it manual-only (POST /companies/refresh).
		RefreshIntervalHours int `yaml:"refresh_interval_hours"`
	} `yaml:"scrape"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 38572
	}
	if c.HTTP.PoolSize == 0 {
		c.HTTP.PoolSize = 64
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = 15
	}
	if c.HTTP.BackoffMillis == 0 {
		c.HTTP.BackoffMillis = 300
	}
	if c.HTTP.Retries == 0 {
		c.HTTP.Retries = 3
	}
	if c.HTTP.HostRPS == 0 {
		c.HTTP.HostRPS = 4
	}
	if c.Scrape.Parallel == 0 {
		c.Scrape.Parallel = 8
	}
	if c.Scrape.IntervalHours == 0 {
		c.Scrape.IntervalHours = 24
	}
	if c.Scrape.MaxKeywords == 0 {
		c.Scrape.MaxKeywords = 4
	}
	if c.Scrape.RefreshParallel == 0 {
		c.Scrape.RefreshParallel = 12
	}
}

// applyEnv lets operators tune a deployment without editing the user config.
func (c *Config) applyEnv() {
	if v, ok := envInt("HTTP_POOL"); ok {
		c.HTTP.PoolSize = v
	}
	if v, ok := envInt("HTTP_TIMEOUT"); ok {
		c.HTTP.TimeoutSeconds = v
	}
	if v, ok := envFloat("HTTP_BACKOFF"); ok {
		c.HTTP.BackoffMillis = int(v * 1000)
	}
	if ua := os.Getenv("HTTP_UA"); ua != "" {
		c.HTTP.UserAgent = ua
	}
	if v, ok := envInt("SCRAPE_PARALLEL"); ok {
		c.Scrape.Parallel = v
	}
	if v, ok := envInt("ATS_MAX_KW"); ok {
		c.Scrape.MaxKeywords = v
	}
	if v, ok := envBool("US_ONLY"); ok {
		c.Scrape.USOnly = v
	}
	if v, ok := envBool("VERBOSE"); ok {
		c.Scrape.Verbose = v
	}
	if raw := os.Getenv("SEARCH_TERMS"); raw != "" {
		var terms []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				terms = append(terms, t)
			}
		}
		if len(terms) > 0 {
			c.Scrape.SearchTerms = terms
		}
	}
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func (c Config) HTTPBackoff() time.Duration {
	return time.Duration(c.HTTP.BackoffMillis) * time.Millisecond
}

func (c Config) ScrapeInterval() time.Duration {
	return time.Duration(c.Scrape.IntervalHours) * time.Hour
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Scrape.RefreshIntervalHours) * time.Hour
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(key string) (bool, bool) {
	raw := strings.ToLower(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	return raw == "1" || raw == "true" || raw == "yes", true
}
