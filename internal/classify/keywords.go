package classify

import "strings"

// SearchKeywords are the probe terms that keyword-driven adapters
// (SuccessFactors, iCIMS, Oracle) iterate, most specific first.
var SearchKeywords = []string{
	"data scientist",
	"data engineer",
	"data analyst",
	"machine learning",
	"data",
}

// keepSubstrings is the cheap pre-filter adapters apply before the strict
// classifier runs, so obviously irrelevant anchors never leave the adapter.
var keepSubstrings = []string{
	"data scientist",
	"data science",
	"data engineer",
	"data analyst",
	"data analytics",
	"machine learning",
	"ml engineer",
	"ml scientist",
	"applied scientist",
	"analytics",
}

// Keep reports whether a raw title (or title+href blob) mentions any
// whitelisted term. It is intentionally looser than Classify.
func Keep(text string) bool {
	t := strings.ToLower(text)
	for _, k := range keepSubstrings {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}
