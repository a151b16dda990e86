package api

import (
	"encoding/json"
	"net/http"
)

// databaseState is the body of GET/PUT /api/v1/database.
type databaseState struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
}

// setDatabaseRequest allows partial updates: absent fields are untouched.
type setDatabaseRequest struct {
	Path     *string `json:"path,omitempty"`
	ReadOnly *bool   `json:"read_only,omitempty"`
}

// handleGetDatabase reports the selected store and read-only flag.
func (s *Server) handleGetDatabase(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, databaseState{
		Path:     s.engine.StorePath(),
		ReadOnly: s.engine.ReadOnly(),
	})
}

// handleSetDatabase selects a store and/or toggles read-only mode, and
// persists the selection as a preference when a store is configured.
func (s *Server) handleSetDatabase(w http.ResponseWriter, r *http.Request) {
	var req setDatabaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if req.Path != nil {
		s.engine.SetStore(*req.Path)
		if s.prefs != nil {
			if err := s.prefs.SetDatabasePath(*req.Path); err != nil {
				s.logger.Warn("failed to persist database path", "error", err)
			}
		}
	}
	if req.ReadOnly != nil {
		s.engine.SetReadOnly(*req.ReadOnly)
	}

	writeJSON(w, http.StatusOK, databaseState{
		Path:     s.engine.StorePath(),
		ReadOnly: s.engine.ReadOnly(),
	})
}

// serverStartRequest is the body of POST /api/v1/server/start.
type serverStartRequest struct {
	Root string `json:"root"`
	Port int    `json:"port,omitempty"`
}

// handleServerStart launches the PHP server for a document root.
func (s *Server) handleServerStart(w http.ResponseWriter, r *http.Request) {
	var req serverStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Root == "" {
		writeBadRequest(w, "root is required")
		return
	}
	if req.Port == 0 {
		req.Port = 8000
	}

	if err := s.php.Start(req.Root, req.Port); err != nil {
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		return
	}

	if s.prefs != nil {
		if err := s.prefs.SetLastRoot(req.Root); err != nil {
			s.logger.Warn("failed to persist project root", "error", err)
		}
		if err := s.prefs.SetPort(s.php.Port()); err != nil {
			s.logger.Warn("failed to persist port", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, s.php.Stats())
}

// handleServerStop terminates the PHP server.
func (s *Server) handleServerStop(w http.ResponseWriter, _ *http.Request) {
	if err := s.php.Stop(); err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.php.Stats())
}

// handleServerRestart restarts the PHP server with its previous settings.
func (s *Server) handleServerRestart(w http.ResponseWriter, _ *http.Request) {
	if err := s.php.Restart(); err != nil {
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.php.Stats())
}

// handleServerStatus reports the supervisor's current snapshot.
func (s *Server) handleServerStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.php.Stats())
}
