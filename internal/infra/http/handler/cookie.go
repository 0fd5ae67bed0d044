package handler

import (
	"net/http"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
)

// CookieConfig holds the session cookie settings.
type CookieConfig struct {
	Name     string
	Secure   bool
	Domain   string
	SameSite http.SameSite
	Path     string
}

// NewCookieConfig creates a CookieConfig from AuthConfig.
func NewCookieConfig(cfg config.AuthConfig) CookieConfig {
	name := cfg.CookieName
	if name == "" {
		name = "console_session"
	}
	return CookieConfig{
		Name:     name,
		Secure:   cfg.CookieSecure,
		Domain:   cfg.CookieDomain,
		SameSite: middleware.ParseSameSite(cfg.CookieSameSite),
		Path:     "/",
	}
}

// SetSessionCookie stores the session token in an httpOnly cookie that
// expires with the token.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, cfg CookieConfig) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	})
}

// SessionToken returns the session cookie's token, or "".
func SessionToken(r *http.Request, cfg CookieConfig) string {
	c, err := r.Cookie(cfg.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
