package successfactors

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"datajobs-engine/internal/classify"
	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

type Options struct {
	Keywords []string // probe terms, defaults to classify.SearchKeywords
	MaxKW    int      // cap on keyword probes per company
}

type Adapter struct {
	hc   *httpx.Client
	opts Options
}

func New(hc *httpx.Client, opts Options) *Adapter {
	if len(opts.Keywords) == 0 {
		opts.Keywords = classify.SearchKeywords
	}
	if opts.MaxKW <= 0 {
		opts.MaxKW = 4
	}
	return &Adapter{hc: hc, opts: opts}
}

func (a *Adapter) Name() string { return "successfactors" }

func (a *Adapter) Handles(co domain.Company) bool {
	u, err := url.Parse(strings.ToLower(co.EntryURL()))
	if err != nil {
		return false
	}
	return strings.Contains(u.Host, "successfactors.com") ||
		strings.Contains(u.Path, "careersection") ||
		strings.Contains(u.Path, "sfcareer")
}

// derive splits the tenant entry URL into its origin and the company query
// parameter some tenants require on the jobboard REST path.
func derive(raw string) (origin, company string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host, u.Query().Get("company")
}

// The REST payload shape differs per tenant generation; we accept all three
// list keys and all the title/href aliases seen in the wild.
type searchResult struct {
	JobPostings     []item `json:"jobPostings"`
	Jobs            []item `json:"jobs"`
	RequisitionList []item `json:"requisitionList"`
}

type item struct {
	Title           string `json:"title"`
	JobTitle        string `json:"jobTitle"`
	DisplayJobTitle string `json:"displayJobTitle"`
	ExternalPath    string `json:"externalPath"`
	JobURL          string `json:"jobUrl"`
	URL             string `json:"url"`
	JobPostingURL   string `json:"jobPostingUrl"`
	JobID           any    `json:"jobId"`
	ID              any    `json:"id"`
}

func (sr searchResult) items() []item {
	if len(sr.JobPostings) > 0 {
		return sr.JobPostings
	}
	if len(sr.Jobs) > 0 {
		return sr.Jobs
	}
	return sr.RequisitionList
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

func (a *Adapter) searchURL(origin, company, keyword string) string {
	q := url.Values{}
	q.Set("company", company)
	q.Set("keyword", keyword)
	q.Set("lang", "en_US")
	q.Set("location", "")
	return origin + "/careersection/rest/jobboard/search?" + q.Encode()
}

// apiSearch probes the jobboard REST endpoint keyword by keyword. A 404 on
// the first probe means the tenant has no REST surface and we stop early.
func (a *Adapter) apiSearch(ctx context.Context, origin, company string) []domain.JobPosting {
	res, err := a.hc.Get(ctx, a.searchURL(origin, company, "data"))
	if err != nil {
		return nil
	}
	notFound := res.StatusCode == 404
	res.Body.Close()
	if notFound {
		return nil
	}

	var out []domain.JobPosting
	seen := map[string]bool{}

	tried := 0
	for _, kw := range a.opts.Keywords {
		if tried >= a.opts.MaxKW {
			break
		}
		tried++

		var sr searchResult
		if err := a.hc.GetJSON(ctx, a.searchURL(origin, company, kw), &sr); err != nil {
			continue
		}
		for _, p := range sr.items() {
			title := firstNonEmpty(p.Title, p.JobTitle, p.DisplayJobTitle)
			if title == "" || !classify.Keep(title) {
				continue
			}
			href := firstNonEmpty(p.ExternalPath, p.JobURL, p.URL, p.JobPostingURL)
			if href == "" {
				if id := firstNonEmpty(idString(p.JobID), idString(p.ID)); id != "" {
					href = "/careersection/jobdetail.ftl?job=" + url.QueryEscape(id)
				}
			}
			if href == "" {
				continue
			}
			full := href
			if !strings.HasPrefix(href, "http") {
				full = origin + "/" + strings.TrimPrefix(href, "/")
			}
			if seen[full] {
				continue
			}
			seen[full] = true
			out = append(out, domain.JobPosting{
				Title:    title,
				ApplyURL: full,
				Source:   "successfactors-api",
			})
		}
	}
	return out
}

// htmlSearch is the fallback: scan the careers page for job-ish anchors.
func (a *Adapter) htmlSearch(ctx context.Context, careersURL string) []domain.JobPosting {
	doc, finalURL, err := a.hc.GetDoc(ctx, careersURL)
	if err != nil {
		return nil
	}
	base, err := url.Parse(finalURL)
	if err != nil {
		return nil
	}

	var out []domain.JobPosting
	seen := map[string]bool{}
	doc.Find(`a[href*="job"]`).Each(func(_ int, s *goquery.Selection) {
		title := strings.Join(strings.Fields(s.Text()), " ")
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		if !classify.Keep(title) && !strings.Contains(strings.ToLower(href), "scientist") {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			full = base.ResolveReference(ref).String()
		}
		if seen[full] {
			return
		}
		seen[full] = true
		if title == "" {
			title = "Data Scientist"
		}
		out = append(out, domain.JobPosting{
			Title:    title,
			ApplyURL: full,
			Source:   "successfactors-html",
		})
	})
	return out
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	base := co.EntryURL()
	if base == "" || !a.Handles(co) {
		return nil, nil
	}
	origin, company := derive(base)
	if origin == "" {
		return nil, nil
	}
	if hits := a.apiSearch(ctx, origin, company); len(hits) > 0 {
		return hits, nil
	}
	return a.htmlSearch(ctx, base), nil
}
