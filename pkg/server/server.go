// Package server exposes a MeTTa runner over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/runner"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/health"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/tracing"
)

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts the metrics handler at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
	}
}

// WithHealth mounts the liveness and readiness probes of checker.
func WithHealth(checker *health.Checker, cfg *config.HealthConfig) Option {
	return func(s *Server) {
		s.checker = checker
		s.healthConfig = cfg
	}
}

// Server serves program evaluation, metrics and health probes.
type Server struct {
	config *config.ServerConfig
	runner *runner.Runner
	logger *slog.Logger

	// runMu serializes access to the runner, which is not safe for
	// concurrent use.
	runMu sync.Mutex

	metricsPath  string
	metrics      http.Handler
	checker      *health.Checker
	healthConfig *config.HealthConfig

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server evaluating programs with r. A nil config uses the
// default server configuration.
func New(cfg *config.ServerConfig, r *runner.Runner, logger *slog.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = &config.DefaultConfig().Server
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		runner: r,
		logger: logger.With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves requests and blocks until ctx is cancelled or the listener
// fails. Cancelling ctx shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:        s.config.ListenAddress,
		Handler:     s.Handler(),
		ReadTimeout: s.config.ReadTimeout,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /eval", tracing.HTTPMiddleware(http.HandlerFunc(s.handleEval)))
	if s.metrics != nil {
		mux.Handle(s.metricsPath, s.metrics)
	}
	if s.checker != nil {
		s.checker.Mount(mux, s.healthConfig)
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}
