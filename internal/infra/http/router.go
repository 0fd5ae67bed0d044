package http

import (
	"net/http"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Router is the routing surface the console registers its pages on. Pages
// are plain HTML forms, so GET and POST are the only verbs. Nil middleware
// is ignored everywhere.
type Router interface {
	// GET also answers HEAD.
	GET(path string, handler http.HandlerFunc, middlewares ...Middleware)
	POST(path string, handler http.HandlerFunc, middlewares ...Middleware)

	// Handle serves every method under pattern, e.g. static assets.
	Handle(pattern string, handler http.Handler)

	// Group mounts fn's routes under prefix behind middlewares.
	Group(prefix string, fn func(Router), middlewares ...Middleware)

	Use(middlewares ...Middleware)
	Handler() http.Handler

	// Walk visits every GET and POST route; HEAD twins are skipped.
	Walk(fn func(method, path string, handler http.Handler) error) error
}

// Chain wraps handler so that middlewares[0] runs first.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for _, mw := range reversed(compact(middlewares)) {
		handler = mw(handler)
	}
	return handler
}

func compact(middlewares []Middleware) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(middlewares))
	for _, mw := range middlewares {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
