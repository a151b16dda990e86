// Package phpserver supervises PHP's built-in development server.
//
// It launches "php -S host:port -t docroot" as a managed subprocess,
// probes for port collisions before binding (falling back to the next free
// port), streams the server's merged stdout/stderr line by line to an
// OnLog callback, and stops the process with SIGTERM followed by SIGKILL
// after a graceful timeout. There is no automatic restart: this is a
// developer tool, and a crashed server should be visible, not hidden.
package phpserver
