package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
)

// Reasons a request was turned away.
const (
	SecurityEventCSRFRejected  = "csrf.rejected"
	SecurityEventRateLimited   = "ratelimit.exceeded"
	SecurityEventSessionDenied = "session.denied"
)

func RecordSecurityEvent(event string) {
	metrics.SecurityEventsTotal.WithLabelValues(event).Inc()
}

// Metrics records count, latency and size of every request except scrapes
// of /metrics itself.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			began := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			// The pattern is only known once chi has routed the request.
			route := routeLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(began).Seconds())
			metrics.HTTPResponseBytes.WithLabelValues(r.Method, route).Observe(float64(rec.bytesWritten))
		})
	}
}

// routeLabel keeps entity ids out of label values: matched requests report
// their pattern, assets collapse to /static and the rest to "unmatched".
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return strings.TrimSuffix(p, "/*")
		}
	}
	if strings.HasPrefix(r.URL.Path, "/static/") {
		return "/static"
	}
	return "unmatched"
}
