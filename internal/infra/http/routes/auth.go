package routes

import (
	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/handler"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// registerAuthRoutes registers the sign-in page and actions. Sign-in
// attempts get a stricter per-IP limit on top of the global one.
func registerAuthRoutes(router Router, h *handler.AuthHandler, rl *config.RateLimitConfig, csrf Middleware, log *logger.Logger) func() {
	if h == nil {
		return func() {}
	}
	loginRL, stop := middleware.LoginRateLimitWithStop(rl, log)

	router.GET(middleware.LoginPath, h.LoginPage, csrf)
	router.POST(middleware.LoginPath, h.Login, loginRL, csrf)
	router.POST("/logout", h.Logout, csrf)
	return stop
}
