package routes

import (
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/handler"
)

// registerConsoleRoutes registers the entity pages. Every page needs a
// session; every form post is CSRF checked.
//
// Mutations are form posts answered with a redirect, so the list is always
// re-rendered by a GET.
func registerConsoleRoutes(router Router, h *handler.ConsoleHandler, session, csrf Middleware) {
	if h == nil {
		return
	}
	router.GET("/", h.Index, session, csrf)

	router.Group(handler.ConsolePrefix, func(r Router) {
		r.GET("/{entity}", h.List)
		r.POST("/{entity}", h.Create)
		r.GET("/{entity}/new", h.New)
		r.GET("/{entity}/export.csv", h.Export)
		r.GET("/{entity}/{id}/edit", h.Edit)
		r.POST("/{entity}/{id}", h.Update)
		r.GET("/{entity}/{id}/delete", h.DeleteConfirm)
		r.POST("/{entity}/{id}/delete", h.Delete)
	}, session, csrf)
}
