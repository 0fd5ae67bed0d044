// Package logger is the console's slog setup: JSON or text output, secret
// redaction and request-scoped fields.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a *slog.Logger whose derived loggers stay *Logger.
type Logger struct {
	*slog.Logger
}

// Config selects level, format ("json" or "text") and destination.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

const redacted = "[REDACTED]"

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds a logger from cfg. Unknown levels fall back to info and a nil
// Output writes to stdout.
func New(cfg Config) *Logger {
	level, ok := levels[strings.ToLower(cfg.Level)]
	if !ok {
		level = slog.LevelInfo
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelDebug,
		ReplaceAttr: redact,
	}

	var h slog.Handler = slog.NewJSONHandler(out, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	}
	return &Logger{Logger: slog.New(h)}
}

// NewDefault logs JSON at info to stdout.
func NewDefault() *Logger {
	return New(Config{Level: "info", Format: "json"})
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// secretMarkers are substrings of attribute keys whose values are never
// written. Keys are compared lowercased.
var secretMarkers = []string{
	"password", "passwd", "secret", "token", "authorization", "bearer",
	"api_key", "apikey", "cookie", "session", "csrf", "jwt", "dsn",
	"credential", "access_key", "private_key",
}

func redact(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, m := range secretMarkers {
		if strings.Contains(key, m) {
			return slog.String(a.Key, redacted)
		}
	}
	return a
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// SetDefault installs l as the process-wide slog logger.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

// ContextKey types the request-scoped values the HTTP middleware stores.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyUserID    ContextKey = "user_id"
)

// scopedKeys are copied from a request context onto its log lines.
var scopedKeys = []ContextKey{ContextKeyRequestID, ContextKeyUserID}

// WithContext adds the request id and signed-in user found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var attrs []any
	for _, k := range scopedKeys {
		if v, _ := ctx.Value(k).(string); v != "" {
			attrs = append(attrs, slog.String(string(k), v))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
