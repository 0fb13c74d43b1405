package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it with middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	jh := HitsHandler{DB: d.DB}
	mux.HandleFunc("/hits", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))

	ch := CompaniesHandler{DB: d.DB, Refresh: d.RefreshCompanies}
	mux.HandleFunc("/companies", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.List,
	}))
	mux.HandleFunc("/companies/import", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.Import,
	}))
	mux.HandleFunc("/companies/export", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Export,
	}))
	mux.HandleFunc("/companies/refresh", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.RunRefresh,
	}))

	sch := ScrapeHandler{
		ScrapeStatus: d.ScrapeStatus,
		Hub:          d.Hub,
		RunScrape:    d.RunScrape,
		Sched:        d.Sched,
	}
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
