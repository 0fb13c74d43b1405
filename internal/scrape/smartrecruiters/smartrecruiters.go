package smartrecruiters

import (
	"context"
	"net/url"
	"strings"

	"datajobs-engine/internal/classify"
	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

type Adapter struct {
	hc *httpx.Client

	// APIBase is the postings API origin, overridable in tests.
	APIBase string
}

func New(hc *httpx.Client) *Adapter {
	return &Adapter{hc: hc, APIBase: "https://api.smartrecruiters.com"}
}

func (a *Adapter) Name() string { return "smartrecruiters" }

func (a *Adapter) Handles(co domain.Company) bool {
	if strings.EqualFold(co.ATS, "smartrecruiters") {
		return true
	}
	u, err := url.Parse(strings.ToLower(co.EntryURL()))
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Host, "smartrecruiters.com")
}

// companySlug pulls the company identifier from a careers.smartrecruiters.com
// or jobs.smartrecruiters.com path.
func companySlug(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Host, "smartrecruiters.com") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return parts[0]
}

type postingsPage struct {
	Content []posting `json:"content"`
	Data    []posting `json:"data"`
}

type posting struct {
	Name         string `json:"name"`
	ReferralURL  string `json:"referralUrl"`
	ApplyURL     string `json:"applyUrl"`
	PostingURL   string `json:"postingUrl"`
	ExternalPath string `json:"externalPath"`
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	slug := companySlug(co.CareersURL)
	if slug == "" {
		return nil, nil
	}

	q := url.Values{"q": {"data"}, "limit": {"200"}, "offset": {"0"}}
	api := a.APIBase + "/v1/companies/" + url.PathEscape(slug) + "/postings?" + q.Encode()

	var page postingsPage
	if err := a.hc.GetJSON(ctx, api, &page); err != nil {
		return nil, nil
	}
	jobs := page.Content
	if len(jobs) == 0 {
		jobs = page.Data
	}

	var out []domain.JobPosting
	seen := map[string]bool{}
	for _, j := range jobs {
		title := strings.TrimSpace(j.Name)
		if !classify.Keep(title) {
			continue
		}
		applyURL := j.ReferralURL
		if applyURL == "" {
			applyURL = j.ApplyURL
		}
		if applyURL == "" {
			applyURL = j.PostingURL
		}
		if applyURL == "" {
			applyURL = j.ExternalPath
		}
		if applyURL == "" || seen[applyURL] {
			continue
		}
		seen[applyURL] = true
		out = append(out, domain.JobPosting{
			Title:    title,
			ApplyURL: applyURL,
			Source:   "smartrecruiters",
		})
	}
	return out, nil
}
