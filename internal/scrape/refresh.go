package scrape

import (
	"context"
	"log"
	"strings"
	"sync"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/detect"
	"datajobs-engine/internal/scrape/discovery"
	"datajobs-engine/internal/scrape/httpx"
	"datajobs-engine/internal/store"
)

type RefreshOptions struct {
	Parallel  int
	Limit     int
	ResetAuto bool // also re-probe rows whose platform is already pinned
}

type RefreshReport struct {
	Probed  int `json:"probed"`
	Updated int `json:"updated"`
}

type refreshResult struct {
	company    domain.Company
	careersURL string
	ats        detect.Platform
}

// RefreshCompanies probes homepages of companies whose careers URL or
// platform is still unresolved and persists the best discovery candidate.
func RefreshCompanies(ctx context.Context, db *store.DB, hc *httpx.Client, opts RefreshOptions) (RefreshReport, error) {
	if opts.Parallel <= 0 {
		opts.Parallel = 12
	}

	companies, err := store.ListActiveCompanies(ctx, db.Pool)
	if err != nil {
		return RefreshReport{}, err
	}

	var targets []domain.Company
	for _, co := range companies {
		auto := strings.EqualFold(co.ATS, "auto") || strings.EqualFold(co.ATS, "manual")
		if opts.ResetAuto || auto || strings.TrimSpace(co.CareersURL) == "" {
			targets = append(targets, co)
		}
	}
	if opts.Limit > 0 && len(targets) > opts.Limit {
		targets = targets[:opts.Limit]
	}
	if len(targets) == 0 {
		return RefreshReport{}, nil
	}

	log.Printf("[refresh] probing %d companies, parallel=%d", len(targets), opts.Parallel)

	workCh := make(chan domain.Company)
	resCh := make(chan refreshResult, len(targets))

	var wg sync.WaitGroup
	wg.Add(opts.Parallel)
	for i := 0; i < opts.Parallel; i++ {
		go func() {
			defer wg.Done()
			for co := range workCh {
				resCh <- probeCompany(ctx, hc, co)
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, co := range targets {
			select {
			case <-ctx.Done():
				return
			case workCh <- co:
			}
		}
	}()

	wg.Wait()
	close(resCh)

	var rep RefreshReport
	rep.Probed = len(targets)
	for res := range resCh {
		if res.careersURL == "" || res.careersURL == res.company.CareersURL {
			continue
		}
		ats := strings.ToUpper(string(res.ats))
		if ats == "" {
			ats = "AUTO"
		}
		if err := store.UpdateCompanyDiscovery(ctx, db.Pool, res.company.ID, res.careersURL, ats); err != nil {
			log.Printf("[refresh] company=%q err=%v", res.company.Name, err)
			continue
		}
		log.Printf("[refresh] company=%q careers_url=%q ats=%s", res.company.Name, res.careersURL, ats)
		rep.Updated++
	}
	return rep, nil
}

func probeCompany(ctx context.Context, hc *httpx.Client, co domain.Company) refreshResult {
	res := refreshResult{company: co}

	// A careers URL we already trust only needs a platform re-check.
	if cu := strings.TrimSpace(co.CareersURL); cu != "" {
		if p := detect.FromURL(cu); p != detect.Unknown {
			res.careersURL = cu
			res.ats = p
			return res
		}
	}

	cands := discovery.FromHomepage(ctx, hc, co.HomepageURL, 1)
	if len(cands) == 0 || cands[0].Score <= 0 {
		return res
	}
	best := cands[0]
	res.careersURL = best.NormalizedURL
	res.ats = best.ATS
	if res.ats == detect.Unknown {
		// Body markers sometimes identify an embedded widget the URL hides.
		if body, _, err := hc.GetBody(ctx, best.NormalizedURL); err == nil {
			res.ats = detect.FromBody(string(body))
		}
	}
	return res
}
