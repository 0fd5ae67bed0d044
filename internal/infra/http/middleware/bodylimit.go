package middleware

import (
	"net/http"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
)

// DefaultMaxBodySize caps form posts at 1 MiB when no limit is configured.
const DefaultMaxBodySize = 1 << 20

// BodyLimit rejects posts whose declared length exceeds maxBytes with a 413
// and caps the rest, so form parsing fails once the limit is crossed.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := maxBytes
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				apierror.RequestTooLarge().WriteJSONWithRequestID(w, GetRequestID(r.Context()))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
