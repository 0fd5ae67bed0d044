package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend API metrics
var (
	// BackendRequestsTotal tracks calls to the scanning API by collection, verb and outcome
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"collection", "method", "outcome"},
	)

	// BackendRequestDuration tracks backend call latency
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_backend_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection", "method"},
	)

	// CollectionRows tracks the row count of the last successful list fetch
	CollectionRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_collection_rows",
			Help: "Number of rows returned by the last list fetch",
		},
		[]string{"collection"},
	)
)

// Console interaction metrics
var (
	// MutationsTotal tracks drawer and modal submissions
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_mutations_total",
			Help: "Total number of create, update and delete submissions",
		},
		[]string{"entity", "op", "outcome"},
	)

	// ValidationFailuresTotal tracks drawer submissions blocked by field rules
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_validation_failures_total",
			Help: "Total number of drawer submissions blocked by validation",
		},
		[]string{"entity"},
	)

	// ExportsTotal tracks CSV exports
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_exports_total",
			Help: "Total number of CSV exports",
		},
		[]string{"entity", "target"},
	)
)

// Session metrics
var (
	// LoginsTotal tracks sign-in attempts by outcome
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_logins_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"outcome"},
	)

	// LogoutsTotal tracks sign-outs
	LogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_logouts_total",
			Help: "Total number of sign-outs",
		},
	)

	// RevokedSessionsRejected tracks requests carrying a revoked session token
	RevokedSessionsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_revoked_sessions_rejected_total",
			Help: "Total number of requests rejected because the session was revoked",
		},
	)
)

// HTTP metrics, labeled by route pattern rather than raw path.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of console HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Console HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_http_requests_in_flight",
			Help: "Number of console HTTP requests being served",
		},
	)

	HTTPResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_response_bytes",
			Help:    "Console HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(128, 8, 6),
		},
		[]string{"method", "route"},
	)

	// SecurityEventsTotal counts requests turned away by CSRF, rate limit or
	// session checks.
	SecurityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_security_events_total",
			Help: "Total number of rejected requests by reason",
		},
		[]string{"event"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
