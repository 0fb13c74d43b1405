package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"datajobs-engine/internal/scrape"
	"datajobs-engine/internal/store"
)

type CompaniesHandler struct {
	DB      *sql.DB
	Refresh func(ctx context.Context, opts scrape.RefreshOptions) (scrape.RefreshReport, error)
}

// List serves GET /companies?name=&active=&limit=
func (h CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	companies, err := store.ListCompanies(r.Context(), h.DB, store.ListCompaniesOpts{
		NameLike:   q.Get("name"),
		OnlyActive: q.Get("active") == "1",
		Limit:      limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"companies": companies, "count": len(companies)})
}

// Import serves POST /companies/import with a CSV request body.
func (h CompaniesHandler) Import(w http.ResponseWriter, r *http.Request) {
	created, updated, err := store.ImportCompaniesCSV(r.Context(), h.DB, r.Body)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_csv", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "created": created, "updated": updated})
}

// Export serves GET /companies/export as a CSV download.
func (h CompaniesHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="companies.csv"`)
	if err := store.ExportCompaniesCSV(r.Context(), h.DB, w); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
	}
}

// RunRefresh serves POST /companies/refresh, re-probing careers URLs in the
// background.
func (h CompaniesHandler) RunRefresh(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	resetAuto := r.URL.Query().Get("reset") == "1"

	go func() {
		if _, err := h.Refresh(context.Background(), scrape.RefreshOptions{
			Limit:     limit,
			ResetAuto: resetAuto,
		}); err != nil {
			log.Printf("[refresh] err=%v", err)
		}
	}()
	writeJSON(w, map[string]any{"ok": true})
}
