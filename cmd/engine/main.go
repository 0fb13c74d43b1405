package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"datajobs-engine/internal/config"
	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/events"
	"datajobs-engine/internal/httpapi"
	"datajobs-engine/internal/scheduler"
	"datajobs-engine/internal/scrape"
	"datajobs-engine/internal/scrape/detect"
	"datajobs-engine/internal/scrape/generic"
	"datajobs-engine/internal/scrape/greenhouse"
	"datajobs-engine/internal/scrape/httpx"
	"datajobs-engine/internal/scrape/icims"
	"datajobs-engine/internal/scrape/lever"
	"datajobs-engine/internal/scrape/oracle"
	"datajobs-engine/internal/scrape/phenom"
	"datajobs-engine/internal/scrape/smartrecruiters"
	"datajobs-engine/internal/scrape/successfactors"
	"datajobs-engine/internal/scrape/workday"
	"datajobs-engine/internal/store"
)

func buildRegistry(hc *httpx.Client, cfg config.Config) *scrape.Registry {
	gen := generic.New(hc, generic.Options{ExtraTerms: cfg.Scrape.SearchTerms})
	reg := scrape.NewRegistry(gen, cfg.Scrape.Verbose)

	reg.Register(detect.Workday, workday.New(hc, workday.Options{
		Terms:  cfg.Scrape.SearchTerms,
		USOnly: cfg.Scrape.USOnly,
	}))
	reg.Register(detect.Greenhouse, greenhouse.New(hc))
	reg.Register(detect.Lever, lever.New(hc))
	reg.Register(detect.SuccessFactors, successfactors.New(hc, successfactors.Options{
		MaxKW: cfg.Scrape.MaxKeywords,
	}))
	reg.Register(detect.ICIMS, icims.New(hc, icims.Options{}))
	reg.Register(detect.Oracle, oracle.New(hc, oracle.Options{
		MaxKW: cfg.Scrape.MaxKeywords,
	}))
	reg.Register(detect.SmartRecruiters, smartrecruiters.New(hc))
	reg.Register(detect.Phenom, phenom.New(hc, generic.Options{ExtraTerms: cfg.Scrape.SearchTerms}))

	return reg
}

func main() {
	// Optional .env next to the binary; real env always wins.
	_ = godotenv.Load()

	dataDir := os.Getenv("DATAJOBS_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; two writers on the same sqlite file is grief.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock data dir: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance already runs in %s", dataDir)
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	dbPath := filepath.Join(dataDir, "datajobs.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hc := httpx.New(httpx.Options{
		Timeout:   cfg.HTTPTimeout(),
		PoolSize:  cfg.HTTP.PoolSize,
		Retries:   cfg.HTTP.Retries,
		Backoff:   cfg.HTTPBackoff(),
		UserAgent: cfg.HTTP.UserAgent,
		HostRPS:   cfg.HTTP.HostRPS,
	})
	reg := buildRegistry(hc, cfg)
	hub := events.NewHub()

	runScrape := func(ctx context.Context, opts scrape.RunOptions) (scrape.RunReport, error) {
		if opts.Parallel <= 0 {
			opts.Parallel = cfg.Scrape.Parallel
		}
		return scrape.RunScrapeOnce(ctx, db, reg, opts, func(co domain.Company, p domain.JobPosting) {
			hub.Publish(events.Make(events.TypeJobFound, events.JobFound{
				Company:  co.Name,
				Title:    p.Title,
				ApplyURL: p.ApplyURL,
				Category: string(p.Category),
				Source:   p.Source,
			}))
		})
	}
	runRefresh := func(ctx context.Context, opts scrape.RefreshOptions) (scrape.RefreshReport, error) {
		if opts.Parallel <= 0 {
			opts.Parallel = cfg.Scrape.RefreshParallel
		}
		return scrape.RefreshCompanies(ctx, db, hc, opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New()
	sched.Add("scrape", cfg.ScrapeInterval(), func(ctx context.Context) error {
		_, err := runScrape(ctx, scrape.RunOptions{})
		return err
	})
	sched.Add("refresh", cfg.RefreshInterval(), func(ctx context.Context) error {
		_, err := runRefresh(ctx, scrape.RefreshOptions{})
		return err
	})
	sched.Start(ctx)

	var scrapeStatus atomic.Value
	scrapeStatus.Store(httpapi.ScrapeStatus{})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:               db.Pool,
		Hub:              hub,
		ScrapeStatus:     &scrapeStatus,
		Sched:            sched,
		RunScrape:        runScrape,
		RefreshCompanies: runRefresh,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.Recover,
			httpapi.AccessLog,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
