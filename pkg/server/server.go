package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/telemetry/health"
	"cgp-hq/seqval/pkg/telemetry/metrics"
)

// SchemaService is the schema manager as seen by the HTTP layer.
// *registry.Manager satisfies it.
type SchemaService interface {
	check.SchemaSource
	Schemas() []*schema.Schema
	Version() string
	Reload() error
}

// BuildInfo is reported by the /version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP validation service.
type Server struct {
	config      *config.ServerConfig
	schemas     SchemaService
	checker     *check.Checker
	health      *health.Checker
	metrics     *metrics.Collector
	metricsPath string
	logger      *slog.Logger
	build       BuildInfo

	router     *chi.Mux
	httpServer *http.Server

	mu           sync.RWMutex
	isRunning    bool
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records HTTP metrics to c and serves them at path.
func WithMetrics(c *metrics.Collector, path string) Option {
	return func(s *Server) {
		s.metrics = c
		s.metricsPath = path
	}
}

// WithHealth replaces the default health checker.
func WithHealth(h *health.Checker) Option {
	return func(s *Server) { s.health = h }
}

// WithBuildInfo sets the build information served at /version.
func WithBuildInfo(b BuildInfo) Option {
	return func(s *Server) { s.build = b }
}

// NewServer creates the validation service. Routes are built immediately,
// so Handler can be used without starting a listener.
func NewServer(cfg *config.ServerConfig, schemas SchemaService, checker *check.Checker, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		schemas: schemas,
		checker: checker,
		health:  health.New(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.router = s.setupRoutes()
	return s
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting validation server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight validations.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running, srv := s.isRunning, s.httpServer
		s.mu.Unlock()
		if !running || srv == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("validation server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
