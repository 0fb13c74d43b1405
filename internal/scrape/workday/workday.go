package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

type Options struct {
	Terms    []string // search terms, defaults to ["data"]
	USOnly   bool
	MaxPages int // per-term pagination cap
}

type Adapter struct {
	hc   *httpx.Client
	opts Options
}

func New(hc *httpx.Client, opts Options) *Adapter {
	if len(opts.Terms) == 0 {
		opts.Terms = []string{"data"}
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 6
	}
	return &Adapter{hc: hc, opts: opts}
}

func (a *Adapter) Name() string { return "workday" }

func (a *Adapter) Handles(co domain.Company) bool {
	raw := co.EntryURL()
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	path := strings.ToLower(u.Path)
	return strings.Contains(host, "myworkdayjobs.com") ||
		strings.Contains(host, "workday") ||
		strings.Contains(host, "wd") ||
		strings.Contains(path, "/wday/") ||
		strings.Contains(path, "/workday")
}

type board struct {
	endpoint string // POST target: /wday/cxs/{tenant}/{site}/jobs
	host     string
	site     string
	referer  string
}

var localeRe = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)

// parseBoard derives the cxs jobs endpoint from a tenant board URL. The path
// shapes vary: /en-US/{site}, /{site}/details/..., /{site}/job/..., bare
// /{site}. Locale segments are stripped before site detection.
func parseBoard(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}
	tenant := strings.Split(u.Host, ".")[0]

	var parts []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) > 0 && localeRe.MatchString(parts[0]) {
		parts = parts[1:]
	}

	site := ""
	for i, seg := range parts {
		if seg == "details" && i > 0 {
			site = parts[i-1]
			break
		}
	}
	if site == "" {
		for i, seg := range parts {
			if seg == "job" && i > 0 {
				site = parts[i-1]
				break
			}
		}
	}
	if site == "" {
		for _, seg := range parts {
			switch seg {
			case "wday", "cxs", "api", "job", "jobs", "details":
			default:
				site = seg
			}
			if site != "" {
				break
			}
		}
	}
	if site == "jobs" {
		for i, seg := range parts {
			if seg == "jobs" && i > 0 {
				site = parts[i-1]
				break
			}
		}
	}
	if tenant == "" || site == "" {
		return board{}, fmt.Errorf("cannot parse workday tenant/site from %q", raw)
	}

	return board{
		endpoint: fmt.Sprintf("%s://%s/wday/cxs/%s/%s/jobs", scheme, u.Host, tenant, site),
		host:     u.Host,
		site:     site,
		referer:  raw,
	}, nil
}

type searchRequest struct {
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
	AppliedFacets map[string]any `json:"appliedFacets"`
}

type searchResponse struct {
	Total       int       `json:"total"`
	JobPostings []posting `json:"jobPostings"`
}

type posting struct {
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
}

func (b board) applyURL(externalPath string) string {
	p := strings.TrimSpace(externalPath)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	// Paths already carrying a locale or the site segment are host-absolute.
	if strings.HasPrefix(p, "/en-") || strings.HasPrefix(p, "/"+b.site+"/") {
		return "https://" + b.host + p
	}
	return "https://" + b.host + "/" + b.site + p
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	b, err := parseBoard(co.EntryURL())
	if err != nil {
		return nil, err
	}

	const limit = 20
	var out []domain.JobPosting
	seen := map[string]bool{}

	for _, term := range a.opts.Terms {
		offset := 0
		for page := 0; page < a.opts.MaxPages; page++ {
			sr, err := a.search(ctx, b, searchRequest{
				Limit:         limit,
				Offset:        offset,
				SearchText:    term,
				AppliedFacets: map[string]any{},
			})
			if err != nil {
				// A failing term never poisons the others.
				break
			}
			if len(sr.JobPostings) == 0 {
				break
			}

			for _, p := range sr.JobPostings {
				loc := strings.TrimSpace(p.LocationsText)
				if a.opts.USOnly && !isUS(loc) {
					continue
				}
				applyURL := b.applyURL(p.ExternalPath)
				if applyURL == "" || seen[applyURL] {
					continue
				}
				seen[applyURL] = true

				title := strings.TrimSpace(p.Title)
				if title == "" {
					title = "Data Role"
				}
				out = append(out, domain.JobPosting{
					Title:    title,
					ApplyURL: applyURL,
					Source:   "workday-api",
					Snippet:  loc,
				})
			}

			offset += limit
			if len(sr.JobPostings) < limit {
				break
			}
		}
	}

	return out, nil
}

// search posts one page of the cxs jobs query. 400/404 means the tenant does
// not expose this endpoint shape; 502/503/504 gets a single retry.
func (a *Adapter) search(ctx context.Context, b board, body searchRequest) (*searchResponse, error) {
	payload, _ := json.Marshal(body)

	do := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
		req.Header.Set("Referer", b.referer)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return a.hc.Do(req)
	}

	res, err := do()
	if err != nil {
		return nil, fmt.Errorf("workday post jobs: %w", err)
	}
	if res.StatusCode == 502 || res.StatusCode == 503 || res.StatusCode == 504 {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
		res, err = do()
		if err != nil {
			return nil, fmt.Errorf("workday retry post jobs: %w", err)
		}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("workday status %d", res.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("workday decode: %w", err)
	}
	return &sr, nil
}
