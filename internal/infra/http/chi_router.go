package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type chiRouter struct {
	mux chi.Router
}

var _ Router = (*chiRouter)(nil)

// NewChiRouter returns a chi-backed Router that trusts X-Real-IP and
// X-Forwarded-For and normalizes paths (double and trailing slashes) before
// matching.
func NewChiRouter() Router {
	mux := chi.NewRouter()
	mux.Use(chimw.RealIP, chimw.CleanPath, chimw.StripSlashes)
	return &chiRouter{mux: mux}
}

func (r *chiRouter) GET(path string, handler http.HandlerFunc, middlewares ...Middleware) {
	h := Chain(handler, middlewares...)
	r.mux.Method(http.MethodGet, path, h)
	r.mux.Method(http.MethodHead, path, h)
}

func (r *chiRouter) POST(path string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mux.Method(http.MethodPost, path, Chain(handler, middlewares...))
}

func (r *chiRouter) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *chiRouter) Group(prefix string, fn func(Router), middlewares ...Middleware) {
	r.mux.Route(prefix, func(sub chi.Router) {
		sub.Use(compact(middlewares)...)
		fn(&chiRouter{mux: sub})
	})
}

func (r *chiRouter) Use(middlewares ...Middleware) {
	r.mux.Use(compact(middlewares)...)
}

func (r *chiRouter) Handler() http.Handler {
	return r.mux
}

func (r *chiRouter) Walk(fn func(method, path string, handler http.Handler) error) error {
	return chi.Walk(r.mux, func(method, route string, h http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodHead || route == "/*" {
			return nil
		}
		return fn(method, route, h)
	})
}
