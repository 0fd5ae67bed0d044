package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// PathParam extracts a URL path parameter from the request.
// Handlers should use this instead of calling chi.URLParam directly.
func PathParam(r *http.Request, key string) string {
	if val := chi.URLParam(r, key); val != "" {
		return val
	}
	return r.PathValue(key)
}

// QueryParam extracts a URL query parameter from the request.
func QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// QueryParamInt extracts an integer query parameter, or def when it is
// missing or malformed.
func QueryParamInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}
