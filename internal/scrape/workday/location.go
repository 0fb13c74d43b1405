package workday

import "strings"

var usStateAbbrs = []string{
	"al", "ak", "az", "ar", "ca", "co", "ct", "de", "fl", "ga", "hi", "id",
	"il", "in", "ia", "ks", "ky", "la", "me", "md", "ma", "mi", "mn", "ms",
	"mo", "mt", "ne", "nv", "nh", "nj", "nm", "ny", "nc", "nd", "oh", "ok",
	"or", "pa", "ri", "sc", "sd", "tn", "tx", "ut", "vt", "va", "wa", "wv",
	"wi", "wy", "dc",
}

var usMarkers = []string{
	"united states", "usa", "u.s.", "u.s.a", "us (remote)",
	"remote - us", "remote, us", "remote in the us",
}

var nonUSMarkers = []string{
	"canada", "united kingdom", "uk", "germany", "france", "spain", "portugal",
	"italy", "netherlands", "belgium", "switzerland", "austria", "ireland",
	"sweden", "norway", "denmark", "finland", "poland", "czech", "slovak",
	"romania", "hungary", "turkey", "israel", "uae", "saudi", "qatar", "egypt",
	"south africa", "nigeria", "kenya", "mexico", "brazil", "argentina",
	"chile", "peru", "colombia", "australia", "new zealand", "india", "china",
	"japan", "korea", "singapore", "hong kong", "taiwan", "malaysia",
	"indonesia", "thailand", "philippines",
}

// isUS is a heuristic over free-text location strings: positive US markers
// win, then state abbreviations in common punctuation contexts, then known
// foreign markers reject. Unknown locations pass through.
func isUS(locationsText string) bool {
	t := strings.ToLower(locationsText)
	for _, k := range usMarkers {
		if strings.Contains(t, k) {
			return true
		}
	}
	for _, ab := range usStateAbbrs {
		if strings.Contains(t, ", "+ab) ||
			strings.Contains(t, " "+ab+")") ||
			strings.Contains(t, " "+ab+" ") ||
			strings.Contains(t, "-"+ab+" ") {
			return true
		}
	}
	for _, k := range nonUSMarkers {
		if strings.Contains(t, k) {
			return false
		}
	}
	return true
}
