package greenhouse

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

var (
	forRe   = regexp.MustCompile(`(?i)[?&]for=([a-z0-9\-_]+)`)
	dataRe  = regexp.MustCompile(`(?i)data-gh-(?:for|org)\s*=\s*["']([a-z0-9\-_]+)["']`)
	linkRe  = regexp.MustCompile(`(?i)https?://boards\.greenhouse\.io/(?:embed/)?([a-z0-9\-_]+)(?:/|["'?])`)
	slugRe  = regexp.MustCompile(`[^a-z0-9\-]+`)
	legalRe = regexp.MustCompile(`-(inc|llc|ltd|co|corp|corporation|company)$`)
)

var probePaths = []string{"/careers/jobs", "/careers", "/jobs", "/search"}

type Adapter struct {
	hc *httpx.Client

	// APIBase is the boards API origin, overridable in tests.
	APIBase string
}

func New(hc *httpx.Client) *Adapter {
	return &Adapter{hc: hc, APIBase: "https://boards-api.greenhouse.io"}
}

func (a *Adapter) Name() string { return "greenhouse-api" }

func (a *Adapter) Handles(co domain.Company) bool {
	if strings.EqualFold(co.ATS, "greenhouse") {
		return true
	}
	for _, raw := range []string{co.CareersURL, co.DataQueryURL} {
		if strings.Contains(strings.ToLower(raw), "greenhouse.io") {
			return true
		}
	}
	return false
}

func tokenFromBoardsURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Host, "greenhouse.io") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return ""
	}
	return parts[len(parts)-1]
}

func tokenFromHTML(html string) string {
	for _, re := range []*regexp.Regexp{forRe, dataRe, linkRe} {
		if m := re.FindStringSubmatch(html); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

func (a *Adapter) probeCommonPaths(ctx context.Context, entryURL string) string {
	u, err := url.Parse(entryURL)
	if err != nil || u.Host == "" {
		return ""
	}
	origin := u.Scheme + "://" + u.Host
	for _, p := range probePaths {
		body, _, err := a.hc.GetBody(ctx, origin+p)
		if err != nil {
			continue
		}
		if t := tokenFromHTML(string(body)); t != "" {
			return t
		}
	}
	return ""
}

// guessTokens builds candidate board slugs from the entry host brand and
// the company name, normalized the way Greenhouse slugs usually are.
func guessTokens(co domain.Company, entry string) []string {
	norm := func(s string) string {
		s = slugRe.ReplaceAllString(strings.ToLower(s), "-")
		s = strings.Trim(s, "-")
		return legalRe.ReplaceAllString(s, "")
	}

	var raws []string
	if u, err := url.Parse(entry); err == nil && u.Host != "" {
		brand := strings.Trim(strings.SplitN(strings.ToLower(u.Host), ".", 2)[0], "-_.")
		raws = append(raws, brand)
	}
	name := strings.ToLower(strings.TrimSpace(co.Name))
	raws = append(raws, name, strings.ReplaceAll(name, "&", "and"))

	seen := map[string]bool{}
	var out []string
	add := func(t string) {
		if t != "" && !seen[t] && len(out) < 6 {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, raw := range raws {
		slug := norm(raw)
		if slug == "" {
			continue
		}
		add(slug)
		add(strings.ReplaceAll(slug, "-", ""))
		add(strings.SplitN(slug, "-", 2)[0])
	}
	return out
}

type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

type boardJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	URL         string `json:"url"`
	Content     string `json:"content"`
}

func (a *Adapter) jobsURL(token string) string {
	return a.APIBase + "/v1/boards/" + url.PathEscape(token) + "/jobs?content=true"
}

func (a *Adapter) board(ctx context.Context, token string) (*boardResponse, bool) {
	var br boardResponse
	if err := a.hc.GetJSON(ctx, a.jobsURL(token), &br); err != nil {
		return nil, false
	}
	return &br, true
}

// resolveToken runs the escalation ladder: boards URL path, page markup,
// common careers paths, then slug guesses validated against the board API.
// Any of the company's URLs may carry the boards link, so all are checked
// before the entry URL is fetched.
func (a *Adapter) resolveToken(ctx context.Context, co domain.Company, entry string) string {
	for _, raw := range []string{co.DataQueryURL, co.CareersURL} {
		if t := tokenFromBoardsURL(raw); t != "" {
			return t
		}
	}
	if body, _, err := a.hc.GetBody(ctx, entry); err == nil {
		if t := tokenFromHTML(string(body)); t != "" {
			return t
		}
	}
	if t := a.probeCommonPaths(ctx, entry); t != "" {
		return t
	}
	for _, cand := range guessTokens(co, entry) {
		if _, ok := a.board(ctx, cand); ok {
			return cand
		}
	}
	return ""
}

func (a *Adapter) Fetch(ctx context.Context, co domain.Company) ([]domain.JobPosting, error) {
	entry := strings.TrimSpace(co.EntryURL())
	if entry == "" {
		return nil, nil
	}
	token := a.resolveToken(ctx, co, entry)
	if token == "" {
		return nil, nil
	}

	br, ok := a.board(ctx, token)
	if !ok {
		return nil, nil
	}

	var out []domain.JobPosting
	seen := map[string]bool{}
	for _, j := range br.Jobs {
		title := strings.TrimSpace(j.Title)
		applyURL := strings.TrimSpace(j.AbsoluteURL)
		if applyURL == "" {
			applyURL = strings.TrimSpace(j.URL)
		}
		if title == "" || applyURL == "" || seen[applyURL] {
			continue
		}
		seen[applyURL] = true
		out = append(out, domain.JobPosting{
			Title:    title,
			ApplyURL: applyURL,
			Source:   a.Name(),
		})
	}
	return out, nil
}
