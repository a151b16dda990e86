package config

import "sync"

// Store binds a Config to the file it was loaded from and persists
// preference changes as they happen, so the last-used project, port, and
// window geometry survive restarts without an explicit save step.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  *Config
}

// NewStore creates a preference store for the given config and file path.
func NewStore(cfg *Config, path string) *Store {
	return &Store{path: path, cfg: cfg}
}

// Config returns a snapshot copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cfg
}

// SetLastRoot records the most recently served document root and saves.
func (s *Store) SetLastRoot(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Project.LastRoot = root
	return s.cfg.Save(s.path)
}

// SetPort records the last-used server port and saves.
func (s *Store) SetPort(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Server.Port = port
	return s.cfg.Save(s.path)
}

// SetWindowGeometry records the host UI's window geometry and saves.
func (s *Store) SetWindowGeometry(geometry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Project.WindowGeometry = geometry
	return s.cfg.Save(s.path)
}

// SetDatabasePath records the selected SQLite file and saves.
func (s *Store) SetDatabasePath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Database.Path = path
	return s.cfg.Save(s.path)
}
