package routes

import (
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/handler"
)

// registerAdminRoutes registers the JSON sign-in ledger. The handler checks
// the admin role itself.
func registerAdminRoutes(router Router, h *handler.SignInHandler, session Middleware) {
	if h == nil {
		return
	}
	router.Group(handler.SignInsPath, func(r Router) {
		r.GET("/", h.List)
		r.GET("/{email}", h.Get)
	}, session)
}
