package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"datajobs-engine/internal/events"
	"datajobs-engine/internal/scheduler"
	"datajobs-engine/internal/scrape"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// ScrapeStatus stores httpapi.ScrapeStatus
	ScrapeStatus *atomic.Value

	// Sched, when set, contributes per-task run state to /scrape/status.
	Sched *scheduler.Runner

	// Engine entrypoints (injected for testability)
	RunScrape        func(ctx context.Context, opts scrape.RunOptions) (scrape.RunReport, error)
	RefreshCompanies func(ctx context.Context, opts scrape.RefreshOptions) (scrape.RefreshReport, error)
}
