package lever

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
	return &Adapter{hc: hc, APIBase: "https://api.lever.co"}
}

func (a *Adapter) Name() string { return "lever" }

func (a *Adapter) Handles(co domain.Company) bool {
	if strings.EqualFold(co.ATS, "lever") {
		return true
	}
	return strings.Contains(strings.ToLower(co.CareersURL), "lever.co")
}

// org pulls the organization slug from a jobs.lever.co hosted-board URL.
func org(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Host, "jobs.lever.co") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return parts[0]
}

type posting struct {
	Text      string `json:"text"`
	Title     string `json:"title"`
	HostedURL string `json:"hostedUrl"`
	ApplyURL  string `json:"applyUrl"`
	URL       string `json:"url"`
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	slug := org(co.CareersURL)
	if slug == "" {
		return nil, nil
	}

	var posts []posting
	if err := a.hc.GetJSON(ctx, a.APIBase+"/v0/postings/"+url.PathEscape(slug)+"?mode=json", &posts); err != nil {
		return nil, nil
	}

	var out []domain.JobPosting
	seen := map[string]bool{}
	for _, p := range posts {
		title := strings.TrimSpace(p.Text)
		if title == "" {
			title = strings.TrimSpace(p.Title)
		}
		if !classify.Keep(title) {
			continue
		}
		applyURL := p.HostedURL
		if applyURL == "" {
			applyURL = p.ApplyURL
		}
		if applyURL == "" {
			applyURL = p.URL
		}
		if applyURL == "" || seen[applyURL] {
			continue
		}
		seen[applyURL] = true
		out = append(out, domain.JobPosting{
			Title:    title,
			ApplyURL: applyURL,
			Source:   "lever",
		})
	}
	return out, nil
}
