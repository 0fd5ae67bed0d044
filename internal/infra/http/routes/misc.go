package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/handler"
)

// StaticPrefix is where the embedded assets are served.
const StaticPrefix = "/static/"

// registerHealthRoutes registers health check endpoints.
func registerHealthRoutes(router Router, h *handler.HealthHandler) {
	if h != nil {
		router.GET("/health", h.Health)
		router.GET("/ready", h.Ready)
	}
	metrics := promhttp.Handler()
	router.GET("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.ServeHTTP(w, r)
	})
}

// registerStaticRoutes mounts the stylesheet and script.
func registerStaticRoutes(router Router, static http.Handler) {
	if static == nil {
		return
	}
	router.Handle(StaticPrefix+"*", static)
}
