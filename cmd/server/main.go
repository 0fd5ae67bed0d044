package main

import (
	"context"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/routes"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/tracing"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Command line flags.
var (
	showRoutes  = flag.Bool("routes", false, "Print all registered routes and exit")
	routeFormat = flag.String("route-format", "table", "Route output format: table, json, csv, simple")
	routeMethod = flag.String("route-method", "", "Filter routes by HTTP method")
	routePath   = flag.String("route-path", "", "Filter routes containing this path")
	routeSort   = flag.String("route-sort", "path", "Sort routes by: path, method, handler")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	// ==========================================================================
	// Configuration & Logger
	// ==========================================================================
	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting console", "app", cfg.App.Name, "env", cfg.App.Env, "version", cfg.App.Version)

	// ==========================================================================
	// Tracing
	// ==========================================================================
	tp, err := tracing.New(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("failed to flush traces", "error", err)
		}
	}()
	log.Info("tracing initialized", "enabled", tp.Enabled())

	// ==========================================================================
	// Infrastructure
	// ==========================================================================
	infra, err := NewInfra(ctx, cfg, tp, log)
	if err != nil {
		log.Error("failed to initialize infrastructure", "error", err)
		return 1
	}
	defer infra.Close(log)

	// ==========================================================================
	// Sessions, Handlers & Routes
	// ==========================================================================
	sessions := NewSessionService(cfg, infra, log)

	handlers, err := NewHandlers(&HandlerDeps{
		Config:   cfg,
		Log:      log,
		Infra:    infra,
		Sessions: sessions,
	})
	if err != nil {
		log.Error("failed to initialize handlers", "error", err)
		return 1
	}

	server := http.NewServer(cfg, log)
	stop := routes.Register(server.Router(), handlers, cfg, routes.SessionConfig{
		Validator:  sessions,
		CookieName: cfg.Auth.CookieName,
		CSRF:       newCSRFConfig(cfg, log),
	}, log)
	server.OnShutdown(stop)

	if *showRoutes {
		defer stop()
		return printRoutes(server.Router(), log)
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	log.Info("console listening", "http_addr", cfg.Server.Addr(), "api", cfg.API.BaseURL)
	if err := serve(sigCtx, server, cfg.Server.ShutdownTimeout, log); err != nil {
		log.Error("server error", "error", err)
		return 1
	}
	log.Info("console stopped")
	return 0
}

// serve runs the server until ctx is cancelled, then drains it within
// grace.
func serve(ctx context.Context, server *http.Server, grace time.Duration, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested", "grace", grace)
		drainCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return server.Shutdown(drainCtx)
	})
	return g.Wait()
}

// printRoutes answers --routes and returns the exit code.
func printRoutes(router http.Router, log *logger.Logger) int {
	filters := http.RouteFilters{Method: *routeMethod, Path: *routePath, SortBy: *routeSort}
	if err := http.PrintRoutes(os.Stdout, http.CollectRoutes(router), *routeFormat, filters); err != nil {
		log.Error("failed to print routes", "error", err)
		return 1
	}
	return 0
}

func initLogger(cfg *config.Config) *logger.Logger {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	log.SetDefault()
	return log
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}

// staticFS roots the embedded assets at the static directory.
func staticFS(fsys fs.FS) (fs.FS, error) {
	return fs.Sub(fsys, "static")
}
