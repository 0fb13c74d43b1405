package discovery

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"datajobs-engine/internal/scrape/detect"
	"datajobs-engine/internal/scrape/httpx"
)

var careerHints = []string{
	"career", "careers", "jobs", "join-us", "joinus",
	"work-with-us", "workwithus", "opportunities", "employment",
}

var assetExts = []string{
	".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg",
	".pdf", ".woff", ".woff2", ".ttf",
}

var icimsHostPrefixRe = regexp.MustCompile(`^(?:internal\-|careers\-|jobs\-)`)

// probeParallel bounds concurrent candidate probes per homepage.
const probeParallel = 4

// Candidate is one scored careers-page guess pulled off a homepage.
type Candidate struct {
	CandidateURL  string          `json:"candidateUrl"`
	NormalizedURL string          `json:"normalizedUrl"`
	ATS           detect.Platform `json:"detectedAts"`
	HTTPStatus    int             `json:"httpStatus"`
	FinalURL      string          `json:"finalUrl"`
	PageTitle     string          `json:"pageTitle"`
	Score         int             `json:"score"`
}

func isAsset(u string) bool {
	low := strings.ToLower(u)
	for _, ext := range assetExts {
		if strings.HasSuffix(low, ext) {
			return true
		}
	}
	return false
}

func hasCareerHint(s string) bool {
	low := strings.ToLower(s)
	for _, h := range careerHints {
		if strings.Contains(low, h) {
			return true
		}
	}
	return false
}

// normalizeByATS rewrites a detected platform link to its canonical listing
// entry. iCIMS tenants get the search page on the public host; SuccessFactors
// links outside the career section get pointed back at /career.
func normalizeByATS(raw string, ats detect.Platform) string {
	if raw == "" || ats == detect.Unknown {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	origin := scheme + "://" + u.Host

	switch ats {
	case detect.ICIMS:
		host := icimsHostPrefixRe.ReplaceAllString(strings.ToLower(u.Host), "")
		return scheme + "://" + host + "/jobs/search?ss=1"
	case detect.SuccessFactors:
		p := strings.ToLower(u.Path)
		if strings.Contains(p, "career") || strings.Contains(p, "sfcareer") || strings.Contains(p, "jobboard") {
			return raw
		}
		return origin + "/career"
	}
	return raw
}

func score(u string, ats detect.Platform, httpOK bool, title string) int {
	s := 0
	low := strings.ToLower(u)
	if strings.Contains(low, "career") {
		s += 5
	}
	if strings.Contains(low, "jobs") {
		s += 3
	}
	if ats != detect.Unknown {
		s += 7
	}
	if httpOK {
		s += 2
	}
	t := strings.ToLower(title)
	if strings.Contains(t, "career") || strings.Contains(t, "jobs") {
		s++
	}
	if strings.Contains(low, "cdn.phenompeople.com") {
		s -= 10
	}
	if strings.Contains(low, "rmkcdn.successfactors.com") {
		s -= 10
	}
	if isAsset(low) {
		s -= 10
	}
	return s
}

func absolute(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// FromHomepage scans a homepage for careers-ish links, probes each candidate
// and returns the top maxN by score.
func FromHomepage(ctx context.Context, hc *httpx.Client, homepageURL string, maxN int) []Candidate {
	if homepageURL == "" {
		return nil
	}
	if maxN <= 0 {
		maxN = 3
	}

	doc, finalURL, err := hc.GetDoc(ctx, homepageURL)
	if err != nil {
		return nil
	}
	base, err := url.Parse(finalURL)
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var cands []string
	add := func(full string) {
		if full == "" || seen[full] || isAsset(full) {
			return
		}
		low := strings.ToLower(full)
		if strings.Contains(low, "rmkcdn.successfactors.com") ||
			strings.Contains(low, "cdn.phenompeople.com") {
			return
		}
		seen[full] = true
		cands = append(cands, full)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || isAsset(href) {
			return
		}
		full := absolute(base, href)
		if hasCareerHint(full) || hasCareerHint(s.Text()) {
			add(full)
		}
	})

	// canonical / og:url as the last-ditch signals
	doc.Find(`link[rel="canonical"]`).Each(func(_ int, s *goquery.Selection) {
		if href, _ := s.Attr("href"); hasCareerHint(href) {
			add(absolute(base, href))
		}
	})
	doc.Find(`meta[property="og:url"]`).Each(func(_ int, s *goquery.Selection) {
		if content, _ := s.Attr("content"); hasCareerHint(content) {
			add(absolute(base, content))
		}
	})

	scored := make([]Candidate, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeParallel)
	for i, u := range cands {
		i, u := i, u
		g.Go(func() error {
			ats := detect.FromURL(u)
			norm := normalizeByATS(u, ats)
			status, final, title := probe(gctx, hc, norm)
			httpOK := status >= 200 && status < 400
			scored[i] = Candidate{
				CandidateURL:  u,
				NormalizedURL: norm,
				ATS:           ats,
				HTTPStatus:    status,
				FinalURL:      final,
				PageTitle:     title,
				Score:         score(norm, ats, httpOK, title),
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return len(scored[i].NormalizedURL) < len(scored[j].NormalizedURL)
	})
	if len(scored) > maxN {
		scored = scored[:maxN]
	}
	return scored
}

// probe GETs the candidate (some sites reject HEAD) and grabs the title.
func probe(ctx context.Context, hc *httpx.Client, raw string) (status int, finalURL, title string) {
	res, err := hc.Get(ctx, raw)
	if err != nil {
		return 0, raw, ""
	}
	defer res.Body.Close()

	finalURL = res.Request.URL.String()
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return res.StatusCode, finalURL, ""
	}
	title = strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	if len(title) > 200 {
		title = title[:200]
	}
	return res.StatusCode, finalURL, title
}
