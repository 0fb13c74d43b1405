package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"datajobs-engine/internal/store"
)

type HitsHandler struct {
	DB *sql.DB
}

// List serves GET /hits?category=&company=&window=&limit=
func (h HitsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	hits, err := store.ListHits(r.Context(), h.DB, store.ListHitsOpts{
		Category: q.Get("category"),
		Company:  q.Get("company"),
		Window:   q.Get("window"),
		Limit:    limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if hits == nil {
		hits = []store.JobHit{}
	}
	writeJSON(w, map[string]any{"hits": hits, "count": len(hits)})
}
