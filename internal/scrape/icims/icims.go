package icims

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"datajobs-engine/internal/classify"
	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

const (
	maxPagesPerKeyword = 3
	maxSearchHits      = 300
	maxFallbackHits    = 200
)

var brandPrefixRe = regexp.MustCompile(`^(www|careers|jobs|work|careers\-|jobs\-|work\-)\.`)

type Options struct {
	Keywords []string // probe terms, defaults to classify.SearchKeywords
}

type Adapter struct {
	hc   *httpx.Client
	opts Options
}

func New(hc *httpx.Client, opts Options) *Adapter {
	if len(opts.Keywords) == 0 {
		opts.Keywords = classify.SearchKeywords
	}
	return &Adapter{hc: hc, opts: opts}
}

func (a *Adapter) Name() string { return "icims" }

func (a *Adapter) Handles(co domain.Company) bool {
	if strings.EqualFold(co.ATS, "icims") {
		return true
	}
	return strings.Contains(strings.ToLower(co.EntryURL()), "icims.com")
}

// brandFromHost maps careers.heb.com to heb, jobs.tapestry.com to tapestry.
func brandFromHost(host string) string {
	h := brandPrefixRe.ReplaceAllString(strings.ToLower(host), "")
	parts := strings.Split(h, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// searchURL normalizes the careers URL into the tenant search page. Non-iCIMS
// hosts are mapped onto {brand}.icims.com when a brand can be derived.
func searchURL(careersURL string) string {
	u, err := url.Parse(careersURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	if strings.HasSuffix(host, "icims.com") {
		return scheme + "://" + host + "/jobs/search?ss=1"
	}
	if brand := brandFromHost(host); brand != "" {
		return "https://" + brand + ".icims.com/jobs/search?ss=1"
	}
	return scheme + "://" + host + "/jobs/search?ss=1"
}

func (a *Adapter) parseListing(doc *goquery.Document, pageURL string) []domain.JobPosting {
	var out []domain.JobPosting
	seen := map[string]bool{}

	doc.Find(`a.iCIMS_Anchor[href*="/jobs/"], a[href*="/jobs/"]`).Each(func(_ int, s *goquery.Selection) {
		title := strings.Join(strings.Fields(s.Text()), " ")
		href, _ := s.Attr("href")
		if href == "" || !classify.Keep(title) {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			base := pageURL
			if i := strings.Index(base, "/jobs/"); i >= 0 {
				base = base[:i]
			}
			if j := strings.Index(href, "/jobs/"); j >= 0 {
				href = href[j+len("/jobs/"):]
			}
			full = base + "/jobs/" + strings.TrimPrefix(href, "/")
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
			Source:   "icims-html",
		})
	})
	return out
}

func hasNextLink(doc *goquery.Document) bool {
	return doc.Find(`a[aria-label="Next"], a[rel="next"]`).Length() > 0
}

// dataQueryFallback scrapes the manually curated search URL when the tenant
// search page yields nothing.
func (a *Adapter) dataQueryFallback(ctx context.Context, dq string) []domain.JobPosting {
	doc, finalURL, err := a.hc.GetDoc(ctx, dq)
	if err != nil {
		return nil
	}

	base := strings.TrimRight(strings.SplitN(finalURL, "?", 2)[0], "/")
	var out []domain.JobPosting
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if len(out) >= maxFallbackHits {
			return
		}
		title := strings.Join(strings.Fields(s.Text()), " ")
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		if !classify.Keep(strings.ToLower(title + " " + href)) {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			full = base + "/" + strings.TrimPrefix(href, "/")
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
			Source:   "icims-fallback",
		})
	})
	return out
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	if strings.TrimSpace(co.CareersURL) == "" {
		return nil, nil
	}

	search := searchURL(co.CareersURL)
	if search == "" {
		return nil, nil
	}

	var collected []domain.JobPosting
	for _, kw := range a.opts.Keywords {
		page := 1
		for i := 0; i < maxPagesPerKeyword; i++ {
			u := search + "&" + url.Values{
				"searchKeyword":  {kw},
				"searchLocation": {""},
				"pr":             {strconv.Itoa(page)},
			}.Encode()
			doc, finalURL, err := a.hc.GetDoc(ctx, u)
			if err != nil {
				break
			}
			batch := a.parseListing(doc, finalURL)
			if len(batch) == 0 {
				break
			}
			collected = append(collected, batch...)
			if !hasNextLink(doc) {
				break
			}
			page++
		}
		// First keyword that produces anything wins; the rest are redundant.
		if len(collected) > 0 {
			break
		}
	}

	if len(collected) > 0 {
		if len(collected) > maxSearchHits {
			collected = collected[:maxSearchHits]
		}
		return collected, nil
	}

	if dq := strings.TrimSpace(co.DataQueryURL); dq != "" {
		return a.dataQueryFallback(ctx, dq), nil
	}
	return nil, nil
}
