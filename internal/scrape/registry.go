package scrape

import (
	"context"
	"log"
	"strings"
	"time"

	"datajobs-engine/internal/classify"
	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/detect"
)

// Adapter is one platform strategy. Handles is a cheap claim check;
// Fetch does the network work and returns raw, unclassified postings.
type Adapter interface {
	Name() string
	Handles(domain.Company) bool
	Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error)
}

// fixedOrder is the escalation sequence tried after URL-based guesses.
// Generic never appears here; it is pinned last unconditionally.
var fixedOrder = []detect.Platform{
	detect.Workday,
	detect.Greenhouse,
	detect.Lever,
	detect.SuccessFactors,
	detect.ICIMS,
	detect.Phenom,
	detect.Oracle,
	detect.SmartRecruiters,
}

type Registry struct {
	adapters map[detect.Platform]Adapter
	generic  Adapter
	verbose  bool
}

func NewRegistry(generic Adapter, verbose bool) *Registry {
	return &Registry{
		adapters: make(map[detect.Platform]Adapter),
		generic:  generic,
		verbose:  verbose,
	}
}

func (r *Registry) Register(p detect.Platform, a Adapter) {
	r.adapters[p] = a
}

// safeHandles never lets a buggy Handles kill the candidate walk.
func safeHandles(a Adapter, co domain.Company) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[registry] adapter=%s handles panic: %v", a.Name(), rec)
			ok = false
		}
	}()
	return a.Handles(co)
}

// Candidates builds the ordered adapter list for a company: platform hint,
// URL guesses, then the fixed escalation order, generic always last,
// duplicates dropped keeping the first occurrence.
func (r *Registry) Candidates(co domain.Company) []Adapter {
	var order []detect.Platform
	if ats := strings.ToLower(strings.TrimSpace(co.ATS)); ats != "" && ats != "auto" {
		order = append(order, detect.Platform(ats))
	}
	order = append(order,
		detect.FromURL(co.EntryURL()),
		detect.FromURL(co.CareersURL),
	)
	order = append(order, fixedOrder...)

	seen := map[detect.Platform]bool{}
	var out []Adapter
	for _, p := range order {
		if p == detect.Unknown || seen[p] {
			continue
		}
		seen[p] = true
		a, ok := r.adapters[p]
		if !ok {
			continue
		}
		if safeHandles(a, co) {
			out = append(out, a)
		}
	}
	if r.generic != nil && safeHandles(r.generic, co) {
		out = append(out, r.generic)
	}
	if len(out) == 0 && r.generic != nil {
		out = append(out, r.generic)
	}
	return out
}

func safeFetch(ctx context.Context, a Adapter, co domain.Company) (hits []domain.JobPosting) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[registry] adapter=%s company=%q fetch panic: %v", a.Name(), co.Name, rec)
			hits = nil
		}
	}()
	hits, err := a.Fetch(ctx, co)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[ats:%s] company=%q err=%v", a.Name(), co.Name, err)
		}
		return nil
	}
	return hits
}

// FetchCompanyJobs runs every candidate adapter and merges their results.
// Adapters overlap on purpose: the first URL claims a posting, later
// duplicates from other adapters are dropped.
func (r *Registry) FetchCompanyJobs(ctx context.Context, co domain.Company) []domain.JobPosting {
	if r.verbose {
		log.Printf("[fetch] company=%q entry=%q", co.Name, co.EntryURL())
	}

	now := time.Now().UTC()
	var out []domain.JobPosting
	seen := map[string]bool{}

	for _, a := range r.Candidates(co) {
		hits := safeFetch(ctx, a, co)
		if len(hits) == 0 {
			continue
		}
		for _, h := range hits {
			title := strings.TrimSpace(h.Title)
			applyURL := strings.TrimSpace(h.ApplyURL)
			if title == "" || applyURL == "" {
				continue
			}
			cat, ok := classify.Classify(title)
			if !ok {
				if r.verbose {
					log.Printf("[fetch] company=%q skip title=%q", co.Name, title)
				}
				continue
			}
			if seen[applyURL] {
				continue
			}
			seen[applyURL] = true

			h.Title = title
			h.ApplyURL = applyURL
			h.Category = cat
			h.CompanyName = co.Name
			if h.Source == "" {
				h.Source = a.Name()
			}
			if h.FoundAt.IsZero() {
				h.FoundAt = now
			}
			out = append(out, h)
		}
	}
	return out
}
