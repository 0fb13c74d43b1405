package domain

import "time"

// Company is one employer on the roster. Name is unique; at least one of
// the three URLs must be set for any adapter to produce results.
type Company struct {
	ID           int64
	Name         string
	HomepageURL  string
	CareersURL   string
	DataQueryURL string // validated search-result URL ("data" typed into the site's search)
	ATS          string // "AUTO" or a fixed platform token like "workday"
	Active       bool

	LastCheckedAt *time.Time
	LastFoundAt   *time.Time
}

// EntryURL is the preferred starting point for discovery:
// data-query URL, then careers URL, then homepage.
func (c Company) EntryURL() string {
	if c.DataQueryURL != "" {
		return c.DataQueryURL
	}
	if c.CareersURL != "" {
		return c.CareersURL
	}
	return c.HomepageURL
}
