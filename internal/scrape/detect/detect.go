package detect

import (
	"net/url"
	"strings"
)

// Platform identifies one of the ATS products we know how to talk to.
type Platform string

const (
	Workday         Platform = "workday"
	Greenhouse      Platform = "greenhouse"
	Lever           Platform = "lever"
	SuccessFactors  Platform = "successfactors"
	ICIMS           Platform = "icims"
	SmartRecruiters Platform = "smartrecruiters"
	Oracle          Platform = "oracle"
	Phenom          Platform = "phenom"
	Generic         Platform = "generic"

	// Unknown is a valid, expected outcome: it signals fallback to
	// generic extraction, never an error.
	Unknown Platform = ""
)

type urlRule struct {
	platform Platform
	match    func(host, path, full string) bool
}

// Ordered: first hit wins. New platforms are additive rows, not new branches.
var urlRules = []urlRule{
	{Workday, func(h, p, u string) bool {
		return strings.Contains(h, "myworkdayjobs.com") ||
			strings.Contains(h, "workday") ||
			strings.Contains(h, ".wd") ||
			strings.Contains(p, "/wday/")
	}},
	{Greenhouse, func(h, p, u string) bool {
		return strings.Contains(h, "boards.greenhouse.io") || strings.HasSuffix(h, "greenhouse.io")
	}},
	{Lever, func(h, p, u string) bool {
		return strings.HasSuffix(h, "lever.co")
	}},
	{SuccessFactors, func(h, p, u string) bool {
		return strings.HasSuffix(h, "successfactors.com") ||
			strings.Contains(p, "careersection") ||
			strings.Contains(u, "sfcareer")
	}},
	{ICIMS, func(h, p, u string) bool {
		return strings.Contains(h, "icims.com")
	}},
	{Phenom, func(h, p, u string) bool {
		return strings.Contains(h, "phenom") && !strings.HasPrefix(h, "cdn.")
	}},
	{Oracle, func(h, p, u string) bool {
		return strings.HasSuffix(h, "oraclecloud.com") ||
			strings.Contains(p, "/hcmui/") ||
			strings.Contains(p, "/candidateexperience/")
	}},
	{SmartRecruiters, func(h, p, u string) bool {
		return strings.HasSuffix(h, "smartrecruiters.com")
	}},
}

// Marker strings that show up in page bodies when the careers site embeds an
// ATS widget instead of linking to it.
var bodyRules = []struct {
	platform Platform
	markers  []string
}{
	{Workday, []string{"myworkdayjobs", "/wday/cxs/"}},
	{Greenhouse, []string{"boards.greenhouse.io", "greenhouse"}},
	{Lever, []string{"jobs.lever.co", "lever-jobs"}},
	{ICIMS, []string{"icims.com"}},
	{SmartRecruiters, []string{"smartrecruiters"}},
	{Oracle, []string{"hcmui/candidateexperience", "oraclecloud.com"}},
	{SuccessFactors, []string{"careersection", "successfactors"}},
	{Phenom, []string{"phenompeople", "/phsearch/api/v1/search", "window.phenom"}},
}

// FromURL guesses the platform from hostname/path fragments alone.
func FromURL(raw string) Platform {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}
	full := strings.ToLower(raw)
	host, path := full, ""
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
		path = strings.ToLower(u.Path)
	}
	for _, r := range urlRules {
		if r.match(host, path, full) {
			return r.platform
		}
	}
	return Unknown
}

// FromBody applies the marker rules against fetched page content.
func FromBody(body string) Platform {
	if body == "" {
		return Unknown
	}
	low := strings.ToLower(body)
	for _, r := range bodyRules {
		for _, m := range r.markers {
			if strings.Contains(low, m) {
				return r.platform
			}
		}
	}
	return Unknown
}

// Detect tries URL rules first, then body markers if content was supplied.
func Detect(rawURL, body string) Platform {
	if p := FromURL(rawURL); p != Unknown {
		return p
	}
	return FromBody(body)
}
