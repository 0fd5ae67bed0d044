package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

const (
	// compressMinSize is the smallest response worth gzipping.
	compressMinSize = 1024
	hstsMaxAge      = 365 * 24 * 60 * 60
	idleTimeout     = time.Minute
)

// Server is the console's HTTP server: a Router behind the global
// middleware stack, plus cleanups run on shutdown.
type Server struct {
	httpServer *http.Server
	router     Router
	config     *config.Config
	logger     *logger.Logger
	onShutdown []func()
}

type ServerOption func(*Server)

// WithRouter replaces the default chi router.
func WithRouter(r Router) ServerOption {
	return func(s *Server) { s.router = r }
}

// NewServer installs the global middleware on the router. Routes are
// registered afterwards through Router.
func NewServer(cfg *config.Config, log *logger.Logger, opts ...ServerOption) *Server {
	s := &Server{config: cfg, logger: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.router == nil {
		s.router = NewChiRouter()
	}

	stack, stop := middlewareStack(cfg, log)
	s.OnShutdown(stop)
	s.router.Use(stack...)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// middlewareStack lists the global middleware, outermost first. Recovery
// wraps everything, the request id exists before anything logs, and the
// metrics and access log see the final status. The returned func stops the
// rate limiter's janitor.
func middlewareStack(cfg *config.Config, log *logger.Logger) ([]Middleware, func()) {
	limit, stop := middleware.RateLimitWithStop(&cfg.RateLimit, log)

	gzip, err := middleware.Compress(compressMinSize)
	if err != nil {
		log.Warn("response compression disabled", "error", err)
	}

	access := middleware.LoggerConfig{
		SlowRequestThreshold: time.Duration(cfg.Log.SlowRequestSeconds) * time.Second,
	}
	if cfg.Log.SkipHealthLogs {
		access.SkipPaths = middleware.DefaultLoggerConfig().SkipPaths
	}

	return []Middleware{
		middleware.RecoveryWithConfig(log, cfg.IsProduction()),
		middleware.RequestID(),
		middleware.SecurityHeadersWithConfig(middleware.SecurityHeadersConfig{
			HSTSEnabled: cfg.IsProduction(),
			HSTSMaxAge:  hstsMaxAge,
		}),
		gzip, // nil when disabled
		middleware.BodyLimit(cfg.Server.MaxBodySize),
		limit,
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.Metrics(),
		middleware.LoggerWithConfig(log, access),
	}, stop
}

func (s *Server) Router() Router        { return s.router }
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// OnShutdown queues fn to run at Shutdown, before connections drain.
func (s *Server) OnShutdown(fn func()) {
	if fn != nil {
		s.onShutdown = append(s.onShutdown, fn)
	}
}

// Start listens on the configured address. A normal Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.served(s.httpServer.ListenAndServe())
}

// Serve is Start on a listener the caller owns.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	return s.served(s.httpServer.Serve(ln))
}

func (s *Server) served(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server: %w", err)
}

// Shutdown runs the queued cleanups, then drains open connections until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	for _, fn := range s.onShutdown {
		fn()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
