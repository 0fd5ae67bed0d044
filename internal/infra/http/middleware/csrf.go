package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

const (
	// CSRFTokenCookieName is the name of the cookie storing the CSRF token.
	CSRFTokenCookieName = "csrf_token"

	// CSRFHeaderName is the header a script sends the token in.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the hidden form input the pages render the token in.
	CSRFFormField = "csrf_token"

	// CSRFTokenLength is the length of the CSRF token in bytes.
	CSRFTokenLength = 32
)

const csrfTokenKey logger.ContextKey = "csrf_token"

// CSRFConfig holds CSRF middleware configuration.
type CSRFConfig struct {
	Secure   bool
	Domain   string
	SameSite http.SameSite
	Path     string
	TTL      time.Duration
	Logger   *logger.Logger
}

// ParseSameSite maps the configured SameSite name to its http constant.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// NewCSRFConfig creates a CSRFConfig from AuthConfig. The token lives as
// long as a session.
func NewCSRFConfig(cfg config.AuthConfig, log *logger.Logger) CSRFConfig {
	if log == nil {
		log = logger.NewNop()
	}
	return CSRFConfig{
		Secure:   cfg.CookieSecure,
		Domain:   cfg.CookieDomain,
		SameSite: ParseSameSite(cfg.CookieSameSite),
		Path:     "/",
		TTL:      cfg.SessionDuration,
		Logger:   log.With("middleware", "csrf"),
	}
}

// GenerateCSRFToken generates a cryptographically secure CSRF token.
func GenerateCSRFToken() (string, error) {
	b := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SetCSRFTokenCookie sets the CSRF token cookie. It is readable by scripts so
// they can echo it in the header.
func SetCSRFTokenCookie(w http.ResponseWriter, token string, cfg CSRFConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFTokenCookieName,
		Value:    token,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: false,
		SameSite: cfg.SameSite,
	})
}

// GetCSRFToken returns the token pages must embed in their forms.
func GetCSRFToken(ctx context.Context) string {
	if t, ok := ctx.Value(csrfTokenKey).(string); ok {
		return t
	}
	return ""
}

// CSRF validates tokens with the double submit cookie pattern. Safe methods
// pass through and get a token cookie when they have none; other methods
// must echo the cookie in the X-CSRF-Token header or the csrf_token form
// field.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookieToken := ""
			if c, err := r.Cookie(CSRFTokenCookieName); err == nil {
				cookieToken = c.Value
			}

			if isSafeMethod(r.Method) {
				if cookieToken == "" {
					token, err := GenerateCSRFToken()
					if err != nil {
						cfg.Logger.Error("operation failed", "op", "csrf_token", "error", err)
						apierror.InternalError(err).WriteJSON(w)
						return
					}
					SetCSRFTokenCookie(w, token, cfg)
					cookieToken = token
				}
				ctx := context.WithValue(r.Context(), csrfTokenKey, cookieToken)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if cookieToken == "" {
				reject(w, r, cfg, "CSRF token missing")
				return
			}

			sent := r.Header.Get(CSRFHeaderName)
			if sent == "" {
				sent = r.PostFormValue(CSRFFormField)
			}
			if sent == "" || subtle.ConstantTimeCompare([]byte(cookieToken), []byte(sent)) != 1 {
				reject(w, r, cfg, "Invalid CSRF token")
				return
			}

			ctx := context.WithValue(r.Context(), csrfTokenKey, cookieToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, cfg CSRFConfig, msg string) {
	cfg.Logger.Warn("csrf rejected",
		"path", r.URL.Path,
		"ip", clientIP(r),
		"reason", msg,
	)
	RecordSecurityEvent(SecurityEventCSRFRejected)
	apierror.Forbidden(msg).WriteJSONWithRequestID(w, GetRequestID(r.Context()))
}

// isSafeMethod returns true if the HTTP method doesn't modify state.
func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
