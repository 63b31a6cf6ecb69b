// Package shared holds the JSON envelope helpers used by every handler so
// responses and error translation stay consistent across verticals.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "karigari/pkg/domain-errors"
)

// ErrorResponse is the wire shape for all error replies. Details carry the
// structured explanation (skipped items, per-seller outcomes) when present.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error into its HTTP response.
// Uncoded errors become opaque 500s so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: string(dErrors.CodeInternal), Message: "internal error"}

	if de := dErrors.Load(err); de != nil {
		status = dErrors.ToHTTPStatus(de.Code)
		resp.Error = string(de.Code)
		resp.Message = de.Message
		resp.Details = de.Details
	}

	WriteJSON(w, status, resp)
}
