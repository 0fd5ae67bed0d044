package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// RecoveryWithConfig turns a handler panic into a 500 and logs it. Stacks
// are left out of production logs. http.ErrAbortHandler is re-raised so the
// server can drop the connection.
func RecoveryWithConfig(log *logger.Logger, isProduction bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}
				attrs := []any{"panic", p, "method", r.Method, "path", r.URL.Path}
				if !isProduction {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				log.WithContext(r.Context()).Error("panic recovered", attrs...)
				apierror.InternalError(nil).WriteJSONWithRequestID(w, GetRequestID(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
