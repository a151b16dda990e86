package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goAuD/NanoServer/internal/infrastructure/config"
	"github.com/goAuD/NanoServer/internal/infrastructure/logging"
	"github.com/goAuD/NanoServer/internal/phpserver"
	"github.com/goAuD/NanoServer/internal/query"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Engine  *query.Engine
	PHP     *phpserver.Server
	Prefs   *config.Store // optional; persists last-used root/port/db
	Version string
}

// Server is the local HTTP control surface.
//
// It manages the HTTP listener, routes, middleware, and the log-stream
// hub. Created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	engine  *query.Engine
	php     *phpserver.Server
	prefs   *config.Store
	version string
	server  *http.Server
	hub     *LogHub
	cancel  context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The log hub is created here so callers can wire the PHP supervisor's
// OnLog callback into it before Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	if deps.PHP == nil {
		return nil, fmt.Errorf("php server supervisor is required")
	}

	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		engine:  deps.Engine,
		php:     deps.PHP,
		prefs:   deps.Prefs,
		version: deps.Version,
		hub:     NewLogHub(deps.Logger),
	}, nil
}

// LogHub returns the hub that fans PHP server log lines out to WebSocket
// clients. Feed it from phpserver.Config.OnLog.
func (s *Server) LogHub() *LogHub {
	return s.hub
}

// Start begins listening for HTTP connections in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	s.logger.Info("api server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server, waiting for in-flight
// requests before forcing remaining connections closed.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("api server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}
