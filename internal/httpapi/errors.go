package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorBody mirrors the ok-style success bodies the handlers emit, so a
// client can branch on the single "ok" field regardless of status.
type errorBody struct {
	OK        bool   `json:"ok"`
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Code:      code,
		Error:     message,
		RequestID: RequestIDFrom(r.Context()),
	})
}
