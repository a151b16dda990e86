package api

import (
	"encoding/json"
	"net/http"

	"github.com/goAuD/NanoServer/internal/query"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes for failures that do not originate in the engine.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeInternal   = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // best-effort write; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeEngineError maps an engine failure onto an HTTP status, using the
// engine's kind as the error code and passing its message through.
func writeEngineError(w http.ResponseWriter, err error) {
	kind := query.KindOf(err)

	var status int
	switch kind {
	case query.KindNoPathSet:
		status = http.StatusConflict
	case query.KindStoreNotFound:
		status = http.StatusNotFound
	case query.KindInvalidIdentifier, query.KindQuery:
		status = http.StatusBadRequest
	case query.KindReadOnlyViolation:
		status = http.StatusForbidden
	default:
		status = http.StatusInternalServerError
	}

	writeError(w, status, string(kind), err.Error())
}
