// Package logging provides structured logging for NanoServer.
//
// It wraps log/slog with the application's defaults: a service attribute on
// every record, configurable level and format, and a pre-configuration
// Default() logger for early startup. Components receive a *Logger (or a
// narrower interface of it) through their constructors rather than reaching
// for a package-level global, so tests can substitute a capturing sink.
package logging
