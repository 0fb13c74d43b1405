package scrape

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/store"
)

type RunOptions struct {
	Parallel int
	Company  string // substring filter on company name
	Limit    int
}

type RunReport struct {
	Companies int `json:"companies"`
	Fetched   int `json:"fetched"`
	Saved     int `json:"saved"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

type companyResult struct {
	company domain.Company
	hits    []domain.JobPosting
}

const (
	upsertTries     = 6
	upsertBaseDelay = 150 * time.Millisecond
	upsertMaxDelay  = 2 * time.Second
)

// upsertWithRetry retries only on SQLite contention, backing off with jitter.
// Non-transient errors drop the record.
func upsertWithRetry(ctx context.Context, db *sql.DB, companyID int64, p domain.JobPosting) (bool, bool) {
	delay := upsertBaseDelay
	for i := 0; i < upsertTries; i++ {
		created, err := store.UpsertJobHit(ctx, db, companyID, p)
		if err == nil {
			return created, true
		}
		if !store.IsContention(err) {
			log.Printf("[scrape] upsert company_id=%d url=%q err=%v", companyID, p.ApplyURL, err)
			return false, false
		}
		select {
		case <-ctx.Done():
			return false, false
		case <-time.After(delay + time.Duration(rand.Int63n(int64(delay)))):
		}
		delay *= 2
		if delay > upsertMaxDelay {
			delay = upsertMaxDelay
		}
	}
	return false, false
}

// RunScrapeOnce fans company fetches across a bounded worker pool, then
// reconciles sequentially against the single sqlite writer. Workers never
// touch the DB. onNewHit fires once per newly created posting.
func RunScrapeOnce(ctx context.Context, db *store.DB, reg *Registry, opts RunOptions, onNewHit func(co domain.Company, p domain.JobPosting)) (RunReport, error) {
	if opts.Parallel <= 0 {
		opts.Parallel = 8
	}

	companies, err := store.ListActiveCompanies(ctx, db.Pool)
	if err != nil {
		return RunReport{}, err
	}
	if f := strings.ToLower(strings.TrimSpace(opts.Company)); f != "" {
		var filtered []domain.Company
		for _, co := range companies {
			if strings.Contains(strings.ToLower(co.Name), f) {
				filtered = append(filtered, co)
			}
		}
		companies = filtered
	}
	if opts.Limit > 0 && len(companies) > opts.Limit {
		companies = companies[:opts.Limit]
	}

	log.Printf("[scrape] companies to scan: %d, parallel=%d", len(companies), opts.Parallel)

	workCh := make(chan domain.Company)
	resCh := make(chan companyResult, len(companies))

	var wg sync.WaitGroup
	wg.Add(opts.Parallel)
	for i := 0; i < opts.Parallel; i++ {
		go func() {
			defer wg.Done()
			for co := range workCh {
				resCh <- companyResult{company: co, hits: reg.FetchCompanyJobs(ctx, co)}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, co := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- co:
			}
		}
	}()

	wg.Wait()
	close(resCh)

	var rep RunReport
	rep.Companies = len(companies)

	for res := range resCh {
		co := res.company
		rep.Fetched += len(res.hits)

		var maxFound *time.Time
		for _, h := range res.hits {
			created, saved := upsertWithRetry(ctx, db.Pool, co.ID, h)
			if !saved {
				rep.Failed++
				continue
			}
			rep.Saved++
			if created {
				rep.Created++
				if onNewHit != nil {
					onNewHit(co, h)
				}
			}
			if maxFound == nil || h.FoundAt.After(*maxFound) {
				t := h.FoundAt
				maxFound = &t
			}
		}

		if err := store.UpdateCompanyCheckpoint(ctx, db.Pool, co.ID, time.Now().UTC(), maxFound); err != nil {
			log.Printf("[scrape] checkpoint company=%q err=%v", co.Name, err)
		}
	}

	log.Printf("[scrape] done. companies=%d fetched=%d saved=%d created=%d failed=%d",
		rep.Companies, rep.Fetched, rep.Saved, rep.Created, rep.Failed)
	return rep, nil
}
