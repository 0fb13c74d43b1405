package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  port: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 38572, cfg.App.Port)
	assert.Equal(t, 64, cfg.HTTP.PoolSize)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 300*time.Millisecond, cfg.HTTPBackoff())
	assert.Equal(t, 3, cfg.HTTP.Retries)
	assert.Equal(t, float64(4), cfg.HTTP.HostRPS)
	assert.Equal(t, 8, cfg.Scrape.Parallel)
	assert.Equal(t, 24*time.Hour, cfg.ScrapeInterval())
	assert.Equal(t, 4, cfg.Scrape.MaxKeywords)
	assert.Equal(t, 12, cfg.Scrape.RefreshParallel)
	// Refresh scheduling is opt-in; absent means manual-only.
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval())
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  port: 9000
http:
  pool_size: 10
  timeout_seconds: 5
scrape:
  parallel: 3
  interval_hours: 6
  refresh_interval_hours: 168
  us_only: true
  search_terms:
    - data
    - analytics
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 10, cfg.HTTP.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 3, cfg.Scrape.Parallel)
	assert.Equal(t, 6*time.Hour, cfg.ScrapeInterval())
	assert.Equal(t, 168*time.Hour, cfg.RefreshInterval())
	assert.True(t, cfg.Scrape.USOnly)
	assert.Equal(t, []string{"data", "analytics"}, cfg.Scrape.SearchTerms)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_POOL", "12")
	t.Setenv("HTTP_TIMEOUT", "30")
	t.Setenv("HTTP_BACKOFF", "1.5")
	t.Setenv("SCRAPE_PARALLEL", "5")
	t.Setenv("ATS_MAX_KW", "2")
	t.Setenv("US_ONLY", "true")
	t.Setenv("VERBOSE", "1")
	t.Setenv("SEARCH_TERMS", "data, machine learning , ")

	cfg, err := Load(writeConfig(t, "app:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.HTTP.PoolSize)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 1500*time.Millisecond, cfg.HTTPBackoff())
	assert.Equal(t, 5, cfg.Scrape.Parallel)
	assert.Equal(t, 2, cfg.Scrape.MaxKeywords)
	assert.True(t, cfg.Scrape.USOnly)
	assert.True(t, cfg.Scrape.Verbose)
	assert.Equal(t, []string{"data", "machine learning"}, cfg.Scrape.SearchTerms)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	defaultPath := writeConfig(t, "app:\n  port: 1234\n")
	dataDir := t.TempDir()

	got, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), got)

	b, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), "port: 1234")

	// Second call must not clobber an existing user copy.
	require.NoError(t, os.WriteFile(got, []byte("app:\n  port: 5678\n"), 0o644))
	got2, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, got, got2)
	b, err = os.ReadFile(got2)
	require.NoError(t, err)
	assert.Contains(t, string(b), "port: 5678")
}
