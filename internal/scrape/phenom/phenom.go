package phenom

import (
	"context"
	"net/url"
	"strings"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/generic"
	"datajobs-engine/internal/scrape/httpx"
)

// Phenom brand sites render through heavy client-side search widgets with no
// stable public API, so this adapter only claims the company and hands the
// actual extraction to the embedded-JSON path of the generic scraper.
type Adapter struct {
	inner *generic.Adapter
}

func New(hc *httpx.Client, opts generic.Options) *Adapter {
	return &Adapter{inner: generic.New(hc, opts)}
}

func (a *Adapter) Name() string { return "phenom" }

func (a *Adapter) Handles(co domain.Company) bool {
	if strings.EqualFold(co.ATS, "phenom") {
		return true
	}
	u, err := url.Parse(strings.ToLower(co.EntryURL()))
	if err != nil {
		return false
	}
	// cdn.phenompeople.com asset links show up on pages that are not
	// themselves Phenom tenants.
	return strings.Contains(u.Host, "phenom") && !strings.HasPrefix(u.Host, "cdn.")
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	hits, err := a.inner.Fetch(ctx, co)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].Source = "phenom-" + hits[i].Source
	}
	return hits, nil
}
