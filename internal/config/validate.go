package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/fuzzy"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"", "json", "text"}
)

// Validate reports every problem found, joined. Production adds its own
// hardening checks on top of the basic ones.
func (c *Config) Validate() error {
	checks := []func() error{
		c.checkServer,
		c.checkAPI,
		c.checkAuth,
		c.checkLog,
		c.checkConsole,
		c.checkTracing,
	}
	if c.IsProduction() {
		checks = append(checks, c.checkProduction, c.checkProductionRedis)
	}
	var errs []error
	for _, check := range checks {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) checkServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

func (c *Config) checkAPI() error {
	if c.API.BaseURL == "" {
		return errors.New("API_URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("API_URL must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("API_TIMEOUT must be non-negative, got %v", c.API.Timeout)
	}
	return nil
}

func (c *Config) checkAuth() error {
	a := c.Auth
	switch {
	case a.JWTSecret == "":
		return errors.New("AUTH_JWT_SECRET is required")
	case len(a.JWTSecret) < 32:
		return errors.New("AUTH_JWT_SECRET must be at least 32 characters")
	case a.SessionDuration <= 0:
		return errors.New("AUTH_SESSION_DURATION must be positive")
	case a.CookieName == "":
		return errors.New("AUTH_COOKIE_NAME is required")
	}
	switch a.CookieSameSite {
	case "strict", "lax":
		return nil
	case "none":
		if !a.CookieSecure {
			return errors.New("AUTH_COOKIE_SECURE must be true when SameSite=None")
		}
		return nil
	}
	return fmt.Errorf("AUTH_COOKIE_SAMESITE must be strict, lax or none, got %q", a.CookieSameSite)
}

func (c *Config) checkLog() error {
	if c.Log.Level != "" && !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid LOG_LEVEL %q (want one of %s)", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("invalid LOG_FORMAT %q (want json or text)", c.Log.Format)
	}
	if c.Log.SlowRequestSeconds < 0 {
		return fmt.Errorf("LOG_SLOW_REQUEST_SECONDS must be non-negative, got %d", c.Log.SlowRequestSeconds)
	}
	return nil
}

func (c *Config) checkConsole() error {
	cc := c.Console
	if cc.SearchDebounce < 0 {
		return errors.New("CONSOLE_SEARCH_DEBOUNCE must be non-negative")
	}
	if len(cc.PageSizeOptions) == 0 {
		return errors.New("CONSOLE_PAGE_SIZE_OPTIONS must not be empty")
	}
	if i := slices.IndexFunc(cc.PageSizeOptions, func(n int) bool { return n < 1 }); i >= 0 {
		return fmt.Errorf("CONSOLE_PAGE_SIZE_OPTIONS must be positive, got %d", cc.PageSizeOptions[i])
	}
	if !slices.Contains(cc.PageSizeOptions, cc.DefaultPageSize) {
		return fmt.Errorf("CONSOLE_PAGE_SIZE %d is not one of CONSOLE_PAGE_SIZE_OPTIONS %v", cc.DefaultPageSize, cc.PageSizeOptions)
	}
	if _, ok := fuzzy.ParseRanking(cc.SearchMatch); !ok {
		return fmt.Errorf("CONSOLE_SEARCH_MATCH %q is not a match tier", cc.SearchMatch)
	}
	return nil
}

func (c *Config) checkTracing() error {
	if r := c.Tracing.SampleRate; r < 0 || r > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %g", r)
	}
	return nil
}

// checkProduction refuses settings that are only acceptable on a laptop.
func (c *Config) checkProduction() error {
	switch {
	case !strings.HasPrefix(c.API.BaseURL, "https://"):
		return errors.New("API_URL must use HTTPS in production")
	case c.API.Token == "":
		return errors.New("API_TOKEN is required in production")
	case !c.Auth.CookieSecure:
		return errors.New("AUTH_COOKIE_SECURE must be true in production")
	case !c.RateLimit.Enabled:
		return errors.New("RATE_LIMIT_ENABLED must be true in production")
	case c.App.Debug:
		return errors.New("APP_DEBUG must be false in production")
	case strings.EqualFold(c.Log.Level, "debug"):
		return errors.New("LOG_LEVEL must not be debug in production")
	case c.Database.Enabled && c.Database.SSLMode == "disable":
		return errors.New("DB_SSLMODE must be require or verify-full in production")
	}
	return nil
}

func (c *Config) checkProductionRedis() error {
	r := c.Redis
	switch {
	case !r.Enabled:
		return nil
	case r.Password == "":
		return errors.New("REDIS_PASSWORD must be set in production")
	case !r.TLSEnabled:
		return errors.New("REDIS_TLS_ENABLED must be true in production")
	case r.TLSSkipVerify:
		return errors.New("REDIS_TLS_SKIP_VERIFY must be false in production")
	case r.DialTimeout < time.Second:
		return fmt.Errorf("REDIS_DIAL_TIMEOUT too short: %v (min 1s)", r.DialTimeout)
	}
	return nil
}
