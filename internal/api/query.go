package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goAuD/NanoServer/internal/query"
)

// queryRequest is the body of POST /api/v1/query.
type queryRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params,omitempty"`
}

// readResponse and writeResponse tag the two result shapes so clients can
// dispatch without sniffing fields.
type readResponse struct {
	Type string `json:"type"`
	query.ReadResult
}

type writeResponse struct {
	Type string `json:"type"`
	query.WriteResult
}

// handleExecuteQuery runs one SQL statement through the engine.
func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeBadRequest(w, "query is required")
		return
	}

	result, err := s.engine.Execute(r.Context(), req.Query, req.Params...)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	switch v := result.(type) {
	case query.ReadResult:
		writeJSON(w, http.StatusOK, readResponse{Type: "read", ReadResult: v})
	case query.WriteResult:
		writeJSON(w, http.StatusOK, writeResponse{Type: "write", WriteResult: v})
	default:
		writeInternalError(w, "unknown result shape")
	}
}

// handleListTables returns all user tables in the selected store.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.engine.ListTables(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tables": tables,
		"count":  len(tables),
	})
}

// handleTableInfo returns column metadata for one table. An invalid or
// unknown name yields an empty column list, mirroring the engine's
// best-effort introspection policy.
func (s *Server) handleTableInfo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	columns, err := s.engine.TableInfo(r.Context(), name)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"columns": columns,
	})
}
