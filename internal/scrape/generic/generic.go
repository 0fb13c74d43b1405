package generic

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

// Anchor texts and hrefs are matched against these before anything is kept.
var keyHints = []string{
	"data scientist", "machine learning scientist", "ml scientist",
	"applied scientist",
	"data engineer", "machine learning engineer", "ml engineer",
	"data analyst", "analytics analyst", "bi analyst",
	"data science", "analytics", "machine learning",
}

var (
	jobURLHint  = regexp.MustCompile(`(?i)(job|jobs|opening|opportunit|requisition|position|careers?/.*job)`)
	paginationHint = regexp.MustCompile(`(?i)(?:/jobs/(?:page|p)/\d+/?$|[?&]page=\d+)`)
	navTextRe   = regexp.MustCompile(`(?i)^(?:go to )?(?:next|previous|prev|first|last)\s+page$`)
	tagRe       = regexp.MustCompile(`<.*?>`)
	addrBlockRe = regexp.MustCompile(`(?i)(address|location)\s*:?.*$`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// Anchors whose text mentions chrome, legal or commerce concerns are never
// job links, whatever their href says.
var textStopwords = []string{
	"privacy", "cookie", "your privacy choices", "legal", "terms",
	"accessibility", "feedback", "help", "support", "contact",
	"benefits", "talent community", "join our talent", "log in",
	"login", "sign in", "create account", "subscribe", "newsletter",
	"supplier", "investor", "press", "newsroom", "gift card",
	"store locator", "faq", "returns", "shipping", "about us",
}

var stateBlobs = []*regexp.Regexp{
	regexp.MustCompile(`(?is)__NEXT_DATA__\s*=\s*(\{.*?\})`),
	regexp.MustCompile(`(?is)__NUXT__\s*=\s*(\{.*?\})`),
	regexp.MustCompile(`(?is)__INITIAL_STATE__\s*=\s*(\{.*?\})`),
	regexp.MustCompile(`(?is)__APOLLO_STATE__\s*=\s*(\{.*?\})`),
}

func cleanText(t string) string {
	t = strings.TrimSpace(html.UnescapeString(t))
	t = tagRe.ReplaceAllString(t, " ")
	t = addrBlockRe.ReplaceAllString(t, "")
	t = wsRe.ReplaceAllString(t, " ")
	return strings.Trim(t, " -–·|")
}

type Options struct {
	ExtraTerms []string // operator-supplied search terms, merged with keyHints
	MaxHits    int
}

type Adapter struct {
	hc    *httpx.Client
	terms []string
	max   int
}

func New(hc *httpx.Client, opts Options) *Adapter {
	if opts.MaxHits <= 0 {
		opts.MaxHits = 500
	}
	terms := make([]string, 0, len(keyHints)+len(opts.ExtraTerms))
	terms = append(terms, keyHints...)
	for _, t := range opts.ExtraTerms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return &Adapter{hc: hc, terms: terms, max: opts.MaxHits}
}

func (a *Adapter) Name() string { return "generic-html" }

// Handles is always true: generic is the fallback of last resort and the
// registry pins it to the end of the candidate order.
func (a *Adapter) Handles(domain.Company) bool { return true }

func (a *Adapter) hasTerm(s string) bool {
	low := strings.ToLower(s)
	for _, k := range a.terms {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	entry := co.EntryURL()
	if entry == "" {
		return nil, nil
	}

	body, finalURL, err := a.hc.GetBody(ctx, entry)
	if err != nil {
		return nil, nil
	}
	base, err := url.Parse(finalURL)
	if err != nil {
		return nil, nil
	}

	out := a.scanAnchors(body, base)
	if len(out) == 0 {
		out = a.scanEmbeddedJSON(body, base)
	}

	seen := map[string]bool{}
	dedup := out[:0]
	for _, h := range out {
		if seen[h.ApplyURL] {
			continue
		}
		seen[h.ApplyURL] = true
		dedup = append(dedup, h)
		if len(dedup) >= a.max {
			break
		}
	}
	return dedup, nil
}

func (a *Adapter) absolute(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref).String()
	if !strings.HasPrefix(abs, "http://") && !strings.HasPrefix(abs, "https://") {
		return ""
	}
	return abs
}

// scanAnchors is stage one: walk every <a> on the page and keep the ones
// that look like job links, skipping nav chrome and pagination.
func (a *Adapter) scanAnchors(body []byte, base *url.URL) []domain.JobPosting {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []domain.JobPosting
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		anchor := cleanText(s.Text())
		if anchor == "" || len(anchor) < 6 {
			return true
		}
		lowAnchor := strings.ToLower(anchor)
		lowHref := strings.ToLower(href)

		if paginationHint.MatchString(lowHref) || navTextRe.MatchString(anchor) {
			return true
		}
		for _, sw := range textStopwords {
			if strings.Contains(lowAnchor, sw) {
				return true
			}
		}

		looksLikeJob := jobURLHint.MatchString(lowHref)
		hasTerm := a.hasTerm(lowAnchor) || a.hasTerm(lowHref)
		if !looksLikeJob && !hasTerm {
			return true
		}

		applyURL := a.absolute(base, href)
		if applyURL == "" {
			return true
		}
		out = append(out, domain.JobPosting{
			Title:    anchor,
			ApplyURL: applyURL,
			Source:   a.Name(),
		})
		return len(out) < a.max
	})
	return out
}

// decodeLoose tolerates trailing garbage after the last closing brace, which
// inline state assignments often carry.
func decodeLoose(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, true
	}
	if last := strings.LastIndex(raw, "}"); last > 0 {
		if err := json.Unmarshal([]byte(raw[:last+1]), &v); err == nil {
			return v, true
		}
	}
	return nil, false
}

// scanEmbeddedJSON is stage two, for SPA career pages with no server-rendered
// anchors: collect ld+json / application-json scripts and framework state
// blobs, then walk every node for job-shaped dicts.
func (a *Adapter) scanEmbeddedJSON(body []byte, base *url.URL) []domain.JobPosting {
	text := string(body)

	var blobs []any
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		doc.Find(`script[type="application/json"], script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
			if v, ok := decodeLoose(strings.TrimSpace(s.Text())); ok {
				blobs = append(blobs, v)
			}
		})
	}
	for _, re := range stateBlobs {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := decodeLoose(m[1]); ok {
				blobs = append(blobs, v)
			}
		}
	}

	var out []domain.JobPosting
	addHit := func(title, href, source string) {
		if title == "" || href == "" || len(out) >= a.max {
			return
		}
		applyURL := a.absolute(base, href)
		if applyURL == "" {
			return
		}
		looksLikeJob := jobURLHint.MatchString(strings.ToLower(href))
		hasTerm := a.hasTerm(title) || a.hasTerm(href)
		if !looksLikeJob && !hasTerm {
			return
		}
		out = append(out, domain.JobPosting{
			Title:    cleanText(title),
			ApplyURL: applyURL,
			Source:   source,
		})
	}

	var walk func(node any)
	walk = func(node any) {
		if len(out) >= a.max {
			return
		}
		switch n := node.(type) {
		case map[string]any:
			if typ, _ := firstString(n, "@type", "type"); strings.Contains(strings.ToLower(typ), "jobposting") {
				t, _ := firstString(n, "title", "name")
				u, _ := firstString(n, "url", "sameAs", "applicationUrl")
				addHit(t, u, "generic-ldjson")
			}
			title, okT := firstString(n, "title", "jobTitle", "name", "positionTitle", "postingTitle")
			href, okU := firstString(n, "absolute_url", "url", "applyUrl", "jobUrl", "canonicalPath", "href", "link", "path")
			if okT && okU {
				addHit(title, href, "generic-json")
			}
			for _, v := range n {
				walk(v)
			}
		case []any:
			for _, it := range n {
				walk(it)
			}
		}
	}
	for _, b := range blobs {
		walk(b)
		if len(out) >= a.max {
			break
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}
