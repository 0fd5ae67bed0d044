package main

import (
	"fmt"

	"github.com/kartik-turing/repo-scanner-frontend/internal/app"
	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/handler"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/routes"
	"github.com/kartik-turing/repo-scanner-frontend/internal/resource"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
	"github.com/kartik-turing/repo-scanner-frontend/web"
)

// HandlerDeps contains dependencies needed to create handlers.
type HandlerDeps struct {
	Config   *config.Config
	Log      *logger.Logger
	Infra    *Infra
	Sessions *app.SessionService
}

// NewHandlers creates all HTTP handlers.
func NewHandlers(deps *HandlerDeps) (routes.Handlers, error) {
	cfg := deps.Config
	log := deps.Log

	registry, err := resource.NewRegistry()
	if err != nil {
		return routes.Handlers{}, fmt.Errorf("resource registry: %w", err)
	}

	renderer, err := handler.NewRenderer(web.Templates)
	if err != nil {
		return routes.Handlers{}, fmt.Errorf("templates: %w", err)
	}

	assets, err := staticFS(web.Static)
	if err != nil {
		return routes.Handlers{}, fmt.Errorf("static assets: %w", err)
	}

	// Only pass configured stores; a nil pointer in an interface would be
	// pinged.
	healthOpts := []handler.HealthHandlerOption{handler.WithBackend(deps.Infra.API)}
	if deps.Infra.DB != nil {
		healthOpts = append(healthOpts, handler.WithDatabase(deps.Infra.DB))
	}
	if deps.Infra.Redis != nil {
		healthOpts = append(healthOpts, handler.WithRedis(deps.Infra.Redis))
	}

	// Same rule for the ledger: without a database it answers 503.
	var accounts handler.AccountReader
	if deps.Infra.Accounts != nil {
		accounts = deps.Infra.Accounts
	}

	return routes.Handlers{
		Health: handler.NewHealthHandler(cfg.App.Version, healthOpts...),
		Auth: handler.NewAuthHandler(
			deps.Sessions,
			renderer,
			handler.NewCookieConfig(cfg.Auth),
			cfg.App.Name,
			log,
		),
		Console: handler.NewConsoleHandler(
			registry,
			deps.Infra.API,
			renderer,
			cfg.Console,
			log,
			handler.WithAppName(cfg.App.Name),
		),
		SignIns: handler.NewSignInHandler(accounts, log),
		Static:  handler.StaticHandler(assets, routes.StaticPrefix),
	}, nil
}
