package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Query engine
		r.Post("/query", s.handleExecuteQuery)
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{name}", s.handleTableInfo)

		// Store selection and read-only mode
		r.Get("/database", s.handleGetDatabase)
		r.Put("/database", s.handleSetDatabase)

		// PHP server supervisor
		r.Route("/server", func(r chi.Router) {
			r.Get("/status", s.handleServerStatus)
			r.Post("/start", s.handleServerStart)
			r.Post("/stop", s.handleServerStop)
			r.Post("/restart", s.handleServerRestart)
		})

		// Live PHP server log lines
		r.Get("/ws/logs", s.handleLogStream)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
