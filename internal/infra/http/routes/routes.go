// Package routes registers all HTTP routes of the console.
package routes

import (
	"net/http"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	infrahttp "github.com/kartik-turing/repo-scanner-frontend/internal/infra/http"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/handler"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Middleware is an alias to the http package's Middleware type.
type Middleware = infrahttp.Middleware

// Router is an alias to the http package's Router interface.
type Router = infrahttp.Router

// Handlers holds all HTTP handlers for route registration.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Console *handler.ConsoleHandler
	SignIns *handler.SignInHandler
	Static  http.Handler // nil serves no assets
}

// SessionConfig holds what the browser routes need to authenticate.
type SessionConfig struct {
	Validator  middleware.SessionValidator
	CookieName string
	CSRF       middleware.CSRFConfig
}

// Register registers all application routes and returns a function that
// stops the background work they started.
//
// Routes are organized across files:
//   - misc.go: health, readiness, metrics, static assets
//   - auth.go: sign-in and sign-out
//   - console.go: entity list, drawer, delete and export pages
//   - admin.go: the sign-in ledger
func Register(router Router, h Handlers, cfg *config.Config, sess SessionConfig, log *logger.Logger) func() {
	registerHealthRoutes(router, h.Health)
	registerStaticRoutes(router, h.Static)

	csrf := middleware.CSRF(sess.CSRF)
	session := middleware.Session(sess.Validator, sess.CookieName, log)

	stop := registerAuthRoutes(router, h.Auth, &cfg.RateLimit, csrf, log)
	registerConsoleRoutes(router, h.Console, session, csrf)
	registerAdminRoutes(router, h.SignIns, session)
	return stop
}
