package phpserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Status represents the current state of the supervised PHP server.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusFailed   Status = "failed"
)

// portFallbackAttempts is how many consecutive ports are probed when the
// requested one is busy.
const portFallbackAttempts = 10

// Config holds configuration for the supervised PHP server.
type Config struct {
	// PHPBinary is the PHP executable. Resolved via PATH when not absolute.
	PHPBinary string

	// Host is the interface the server binds to.
	Host string

	// GracefulTimeout is how long Stop waits after SIGTERM before SIGKILL.
	GracefulTimeout time.Duration

	// OnLog receives every output line from the PHP server, plus the
	// supervisor's own start/stop notices. Called from a background
	// goroutine; implementations must be safe for that.
	OnLog func(line string)
}

// Logger is the diagnostic sink for the supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all diagnostics.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Server manages the lifecycle of one PHP built-in server process.
type Server struct {
	cfg    Config
	logger Logger

	mu            sync.RWMutex
	cmd           *exec.Cmd
	status        Status
	port          int
	docRoot       string
	startTime     time.Time
	lastError     error
	stopRequested bool
	done          chan struct{}
}

// New creates a supervisor with the given configuration, applying defaults
// for zero values.
func New(cfg Config) *Server {
	if cfg.PHPBinary == "" {
		cfg.PHPBinary = "php"
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.GracefulTimeout == 0 {
		cfg.GracefulTimeout = 5 * time.Second
	}
	if cfg.OnLog == nil {
		cfg.OnLog = func(string) {}
	}

	return &Server{
		cfg:    cfg,
		logger: noopLogger{},
		status: StatusStopped,
	}
}

// SetLogger sets the diagnostic sink for the supervisor.
func (s *Server) SetLogger(logger Logger) {
	s.logger = logger
}

// CheckPHP verifies the PHP binary is runnable and returns its version
// line (e.g. "PHP 8.3.6 (cli) ...").
func CheckPHP(binary string) (string, error) {
	out, err := exec.Command(binary, "-v").Output()
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", binary, err)
	}
	version, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(version), nil
}

// Start launches the PHP server for the given document root.
//
// If the requested port is busy, the next free port is used; the actual
// port is reported by Port(). Start returns an error when the server is
// already running, when no port is free, or when the process fails to
// launch.
func (s *Server) Start(docRoot string, port int) error {
	s.mu.Lock()
	if s.status == StatusRunning || s.status == StatusStarting {
		s.mu.Unlock()
		return fmt.Errorf("php server is already running on port %d", s.port)
	}
	s.status = StatusStarting
	s.stopRequested = false
	s.mu.Unlock()

	if PortInUse(s.cfg.Host, port) {
		freePort, ok := FindAvailablePort(s.cfg.Host, port, portFallbackAttempts)
		if !ok {
			s.setFailed(fmt.Errorf("ports %d-%d are all in use", port, port+portFallbackAttempts-1))
			return fmt.Errorf("ports %d-%d are all in use", port, port+portFallbackAttempts-1)
		}
		s.logger.Info("port busy, using fallback", "requested", port, "using", freePort)
		port = freePort
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, port)
	cmd := exec.Command(s.cfg.PHPBinary, "-S", addr, "-t", docRoot)

	// New process group so Stop can signal PHP and any children together.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.setFailed(err)
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout // merge: PHP logs requests on stderr

	if err := cmd.Start(); err != nil {
		s.setFailed(err)
		return fmt.Errorf("starting php server: %w", err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.status = StatusRunning
	s.port = port
	s.docRoot = docRoot
	s.startTime = time.Now()
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.captureOutput(stdout)
	go s.wait(cmd, done)

	s.logger.Info("php server started",
		"pid", cmd.Process.Pid,
		"address", addr,
		"docroot", docRoot,
	)
	s.cfg.OnLog(fmt.Sprintf("[nanoserver] started at http://%s", addr))
	s.cfg.OnLog(fmt.Sprintf("[nanoserver] document root: %s", docRoot))

	return nil
}

// setFailed records a launch failure.
func (s *Server) setFailed(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.lastError = err
	s.mu.Unlock()
}

// captureOutput streams the server's merged output line by line to the
// logger and the OnLog callback.
func (s *Server) captureOutput(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		s.logger.Debug("php output", "line", line)
		s.cfg.OnLog(line)
	}
}

// wait blocks until the process exits and records the outcome.
func (s *Server) wait(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	defer close(done)

	s.mu.Lock()
	stopRequested := s.stopRequested
	if stopRequested {
		s.status = StatusStopped
	} else {
		s.status = StatusFailed
		s.lastError = err
	}
	s.mu.Unlock()

	if stopRequested {
		s.logger.Info("php server stopped as requested")
		return
	}
	s.logger.Warn("php server exited unexpectedly", "error", err)
	s.cfg.OnLog("[nanoserver] server exited unexpectedly")
}

// Stop terminates the PHP server: SIGTERM to the process group, then
// SIGKILL after the graceful timeout. Stopping an already-stopped server
// is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.status != StatusRunning && s.status != StatusStarting {
		s.mu.Unlock()
		return nil
	}
	s.stopRequested = true
	cmd := s.cmd
	done := s.done
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil || done == nil {
		return nil
	}

	pid := cmd.Process.Pid
	s.logger.Info("stopping php server", "pid", pid)

	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		if !errors.Is(err, syscall.ESRCH) {
			s.logger.Warn("failed to send SIGTERM", "error", err)
		}
	}

	select {
	case <-done:
	case <-time.After(s.cfg.GracefulTimeout):
		s.logger.Warn("graceful shutdown timeout, sending SIGKILL", "pid", pid)
		if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
			if !errors.Is(err, syscall.ESRCH) {
				return fmt.Errorf("killing php server: %w", err)
			}
		}
		<-done
	}

	s.cfg.OnLog("[nanoserver] server stopped")
	return nil
}

// Restart stops the server and starts it again with the same document root
// and port.
func (s *Server) Restart() error {
	s.mu.RLock()
	docRoot := s.docRoot
	port := s.port
	s.mu.RUnlock()

	if docRoot == "" {
		return fmt.Errorf("php server has never been started")
	}
	if err := s.Stop(); err != nil {
		return err
	}
	return s.Start(docRoot, port)
}

// Status returns the current supervisor status.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsRunning reports whether the PHP server is currently running.
func (s *Server) IsRunning() bool {
	return s.Status() == StatusRunning
}

// Port returns the port the server actually bound, which may differ from
// the requested one after a collision fallback. Zero before first start.
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// DocRoot returns the served document root. Empty before first start.
func (s *Server) DocRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docRoot
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("http://%s:%d", s.cfg.Host, s.port)
}

// PID returns the process ID, or 0 if not running.
func (s *Server) PID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cmd != nil && s.cmd.Process != nil && s.status == StatusRunning {
		return s.cmd.Process.Pid
	}
	return 0
}

// Uptime returns how long the server has been running, or 0 when stopped.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != StatusRunning {
		return 0
	}
	return time.Since(s.startTime)
}

// LastError returns the error from the most recent unexpected exit or
// launch failure.
func (s *Server) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Stats is a point-in-time snapshot of the supervised process.
type Stats struct {
	Status    Status        `json:"status"`
	PID       int           `json:"pid,omitempty"`
	Port      int           `json:"port,omitempty"`
	DocRoot   string        `json:"doc_root,omitempty"`
	URL       string        `json:"url,omitempty"`
	Uptime    time.Duration `json:"uptime,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Stats returns current statistics for the server.
func (s *Server) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Status:  s.status,
		Port:    s.port,
		DocRoot: s.docRoot,
	}
	if s.status == StatusRunning {
		if s.cmd != nil && s.cmd.Process != nil {
			stats.PID = s.cmd.Process.Pid
		}
		stats.URL = fmt.Sprintf("http://%s:%d", s.cfg.Host, s.port)
		stats.Uptime = time.Since(s.startTime)
	}
	if s.lastError != nil {
		stats.LastError = s.lastError.Error()
	}
	return stats
}
