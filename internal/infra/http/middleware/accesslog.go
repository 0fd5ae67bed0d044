package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// LoggerConfig tunes the access log.
type LoggerConfig struct {
	// SkipPaths are never logged.
	SkipPaths []string

	// SlowRequestThreshold promotes slower successful requests to WARN.
	// Zero turns the promotion off.
	SlowRequestThreshold time.Duration
}

// DefaultLoggerConfig skips health checks and metric scrapes.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		SkipPaths:            []string{"/health", "/ready", "/metrics"},
		SlowRequestThreshold: 5 * time.Second,
	}
}

// LoggerWithConfig writes one access line per request. The list state in
// the query string (search, sort, page) is logged with it; request id and
// signed-in user come from the context.
func LoggerWithConfig(log *logger.Logger, cfg LoggerConfig) func(http.Handler) http.Handler {
	skip := slices.Clone(cfg.SkipPaths)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(skip, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			began := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			took := time.Since(began)

			level, msg := accessLevel(rec.statusCode, took, cfg.SlowRequestThreshold)
			log.WithContext(r.Context()).Log(r.Context(), level, msg,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", rec.statusCode,
				"duration", took,
				"bytes", rec.bytesWritten,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

func accessLevel(status int, took, slow time.Duration) (slog.Level, string) {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError, "http request"
	case status >= http.StatusBadRequest:
		return slog.LevelWarn, "http request"
	case slow > 0 && took > slow:
		return slog.LevelWarn, "slow http request"
	}
	return slog.LevelInfo, "http request"
}
