package domain

import "time"

type Category string

const (
	DataScientist Category = "Data Scientist"
	DataEngineer  Category = "Data Engineer"
	DataAnalyst   Category = "Data Analyst"
)

// JobPosting is one raw hit produced by an adapter. It only lives for the
// duration of a scrape pass; the orchestrator classifies and dedupes it
// before anything reaches storage.
type JobPosting struct {
	CompanyName string
	Title       string
	ApplyURL    string
	Source      string // adapter tag, e.g. "greenhouse-api"
	Snippet     string
	Category    Category
	FoundAt     time.Time // zero means "stamp at normalization time"
}
