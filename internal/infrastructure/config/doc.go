// Package config provides configuration loading and preference persistence
// for NanoServer.
//
// A single YAML file under ~/.nanoserver serves both roles: it configures
// the application (logging, API surface, PHP binary) and it remembers the
// user's last session (project folder, port, window geometry). Loading
// merges defaults, file values, and NANOSERVER_* environment overrides,
// in that order; a missing file simply yields defaults.
//
// Usage:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := config.NewStore(cfg, config.DefaultPath())
//	store.SetLastRoot("/srv/my-project")
package config
