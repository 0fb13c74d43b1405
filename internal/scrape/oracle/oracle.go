package oracle

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"datajobs-engine/internal/classify"
	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

var siteRe = regexp.MustCompile(`/sites/([^/]+)/?`)

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

func (a *Adapter) Name() string { return "oracle" }

func (a *Adapter) Handles(co domain.Company) bool {
	if strings.EqualFold(co.ATS, "oracle") {
		return true
	}
	raw := strings.ToLower(co.EntryURL())
	return strings.Contains(raw, "oraclecloud.com") ||
		strings.Contains(raw, "/hcmui/") ||
		strings.Contains(raw, "/candidateexperience/")
}

// derive pulls the origin and site token out of a CandidateExperience URL.
// Tenants without a /sites/ segment get the "CX" default.
func derive(careersURL string) (origin, site string) {
	u, err := url.Parse(careersURL)
	if err != nil || u.Host == "" {
		return "", ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	site = "CX"
	if m := siteRe.FindStringSubmatch(u.Path); m != nil {
		site = m[1]
	}
	return scheme + "://" + u.Host, site
}

type requisitionList struct {
	Items        []requisition `json:"items"`
	Requisitions []requisition `json:"requisitions"`
	Data         []requisition `json:"data"`
}

func (rl requisitionList) items() []requisition {
	if len(rl.Items) > 0 {
		return rl.Items
	}
	if len(rl.Requisitions) > 0 {
		return rl.Requisitions
	}
	return rl.Data
}

type requisition struct {
	Title         string `json:"Title"`
	TitleLower    string `json:"title"`
	PostingTitle  string `json:"PostingTitle"`
	ID            any    `json:"Id"`
	RequisitionID any    `json:"RequisitionId"`
	IDValue       any    `json:"IdValue"`
	ExternalURL   string `json:"ExternalURL"`
	URL           string `json:"url"`
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

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func collect(items []requisition, baseDetail string) []domain.JobPosting {
	var out []domain.JobPosting
	seen := map[string]bool{}
	for _, it := range items {
		title := firstNonEmpty(it.Title, it.TitleLower, it.PostingTitle)
		if title == "" || !classify.Keep(title) {
			continue
		}
		applyURL := firstNonEmpty(it.ExternalURL, it.URL)
		if applyURL == "" {
			if rid := firstNonEmpty(idString(it.ID), idString(it.RequisitionID), idString(it.IDValue)); rid != "" {
				applyURL = baseDetail + "/" + rid
			}
		}
		if applyURL == "" || seen[applyURL] {
			continue
		}
		seen[applyURL] = true
		out = append(out, domain.JobPosting{
			Title:    title,
			ApplyURL: applyURL,
			Source:   "oracle-api",
		})
	}
	return out
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	careersURL := strings.TrimSpace(co.CareersURL)
	if careersURL == "" {
		return nil, nil
	}
	origin, site := derive(careersURL)
	if origin == "" {
		return nil, nil
	}

	// Preflight follows redirects; the final URL often carries the real
	// site token when the configured one is stale.
	preURL := careersURL
	if _, finalURL, err := a.hc.GetBody(ctx, careersURL); err == nil && finalURL != "" {
		preURL = finalURL
		if m := siteRe.FindStringSubmatch(finalURL); m != nil {
			site = m[1]
		}
	}

	api := fmt.Sprintf("%s/hcmUI/CandidateExperience/en/sites/%s/requisitions", origin, site)
	baseDetail := fmt.Sprintf("%s/hcmUI/CandidateExperience/en/sites/%s/requisition", origin, site)

	// Quick probe: a 404 here means the tenant has no requisitions API at
	// this site token, so keyword loops would be wasted round trips.
	if res, err := a.hc.Get(ctx, api+"?"+url.Values{"keyword": {"data"}, "limit": {"1"}, "offset": {"0"}}.Encode()); err == nil {
		notFound := res.StatusCode == 404
		res.Body.Close()
		if notFound {
			return nil, nil
		}
	}

	tried := 0
	for _, kw := range a.opts.Keywords {
		if tried >= a.opts.MaxKW {
			break
		}
		tried++
		q := url.Values{"keyword": {kw}, "limit": {"50"}, "offset": {"0"}}
		var rl requisitionList
		if err := a.hc.GetJSON(ctx, api+"?"+q.Encode(), &rl); err != nil {
			continue
		}
		if got := collect(rl.items(), baseDetail); len(got) > 0 {
			return got, nil
		}
	}

	return a.htmlFallback(ctx, preURL, origin), nil
}

// htmlFallback scans the rendered careers page for requisition anchors.
func (a *Adapter) htmlFallback(ctx context.Context, pageURL, origin string) []domain.JobPosting {
	doc, _, err := a.hc.GetDoc(ctx, pageURL)
	if err != nil {
		return nil
	}

	var out []domain.JobPosting
	seen := map[string]bool{}
	doc.Find(`a[href*="/requisition/"]`).Each(func(_ int, s *goquery.Selection) {
		title := strings.Join(strings.Fields(s.Text()), " ")
		if !classify.Keep(title) {
			return
		}
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		applyURL := href
		if !strings.HasPrefix(href, "http") {
			applyURL = origin + href
		}
		if seen[applyURL] {
			return
		}
		seen[applyURL] = true
		if title == "" {
			title = "Data Scientist"
		}
		out = append(out, domain.JobPosting{
			Title:    title,
			ApplyURL: applyURL,
			Source:   "oracle-html",
		})
	})
	return out
}
