package httpapi

import (
	"database/sql"
	"net/http"

	"datajobs-engine/internal/store"
)

type HealthHandler struct {
	DB *sql.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	hits, err := store.CountHits(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{
		"ok":   true,
		"hits": hits,
	})
}
