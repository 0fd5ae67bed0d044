// Package config loads the console's settings from environment variables.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/fuzzy"
)

// APP_ENV values with special handling.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the whole console configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	API       APIConfig
	Auth      AuthConfig
	Log       LogConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Console   ConsoleConfig
	Tracing   TracingConfig
	Export    ExportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string
	Env     string
	Debug   bool
	Version string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration // Per-request handler timeout
	ShutdownTimeout time.Duration
	MaxBodySize     int64
}

// APIConfig points at the external scanning API.
type APIConfig struct {
	BaseURL string
	Token   string
	// Timeout bounds each backend call. Zero disables the client timeout.
	Timeout time.Duration
}

// AuthConfig holds session configuration.
type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	SessionDuration time.Duration
	CookieName      string
	CookieSecure    bool
	CookieDomain    string // Empty = current host
	CookieSameSite  string // "strict", "lax", or "none"
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string

	SkipHealthLogs     bool // Skip logging health check endpoints
	SlowRequestSeconds int  // Log requests slower than this as warnings
}

// RedisConfig holds Redis configuration. Redis backs session revocation.
type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          int
	Password      string
	DB            int
	PoolSize      int
	MinIdleConns  int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	TLSEnabled    bool
	TLSSkipVerify bool
	MaxRetries    int
	MinRetryDelay time.Duration
	MaxRetryDelay time.Duration
}

// DatabaseConfig holds database configuration. Postgres keeps the sign-in ledger.
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RateLimitConfig holds the per-IP limits.
type RateLimitConfig struct {
	Enabled         bool
	RequestsPerSec  float64
	Burst           int
	LoginPerMinute  int
	LoginBurst      int
	CleanupInterval time.Duration
}

// ConsoleConfig holds list view defaults.
type ConsoleConfig struct {
	SearchDebounce  time.Duration
	DefaultPageSize int
	PageSizeOptions []int
	// SearchMatch is the weakest fuzzy tier that keeps a row, e.g. "contains".
	SearchMatch string
	// SearchAccents makes accents significant in search.
	SearchAccents bool
}

// Ranker builds the search ranker for list views. Call it on a validated
// config; an unknown SearchMatch falls back to the default tier.
func (cc ConsoleConfig) Ranker() *fuzzy.Ranker {
	var opts []fuzzy.Option
	if tier, ok := fuzzy.ParseRanking(cc.SearchMatch); ok {
		opts = append(opts, fuzzy.WithThreshold(tier))
	}
	if cc.SearchAccents {
		opts = append(opts, fuzzy.WithDiacritics())
	}
	return fuzzy.New(opts...)
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string // host:port of the OTLP/HTTP collector
	Insecure    bool
	SampleRate  float64
	ServiceName string
}

// ExportConfig holds S3 settings for CSV exports.
type ExportConfig struct {
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
}

// Load reads the configuration from the environment and validates it.
// Malformed values fall back to their defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:    str("APP_NAME", "scanner-console"),
			Env:     str("APP_ENV", EnvDevelopment),
			Debug:   parsed("APP_DEBUG", false, strconv.ParseBool),
			Version: str("APP_VERSION", "dev"),
		},
		Server: ServerConfig{
			Host:            str("SERVER_HOST", "0.0.0.0"),
			Port:            parsed("SERVER_PORT", 3000, strconv.Atoi),
			ReadTimeout:     parsed("SERVER_READ_TIMEOUT", 15*time.Second, time.ParseDuration),
			WriteTimeout:    parsed("SERVER_WRITE_TIMEOUT", 30*time.Second, time.ParseDuration),
			RequestTimeout:  parsed("SERVER_REQUEST_TIMEOUT", 30*time.Second, time.ParseDuration),
			ShutdownTimeout: parsed("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second, time.ParseDuration),
			MaxBodySize:     parsed("SERVER_MAX_BODY_SIZE", int64(1<<20), parseInt64),
		},
		API: APIConfig{
			BaseURL: str("API_URL", "http://localhost:8080/"),
			Token:   str("API_TOKEN", ""),
			Timeout: parsed("API_TIMEOUT", 0, time.ParseDuration),
		},
		Auth: AuthConfig{
			JWTSecret:       str("AUTH_JWT_SECRET", ""),
			JWTIssuer:       str("AUTH_JWT_ISSUER", "scanner-console"),
			SessionDuration: parsed("AUTH_SESSION_DURATION", 30*24*time.Hour, time.ParseDuration),
			CookieName:      str("AUTH_COOKIE_NAME", "console_session"),
			CookieSecure:    parsed("AUTH_COOKIE_SECURE", false, strconv.ParseBool),
			CookieDomain:    str("AUTH_COOKIE_DOMAIN", ""),
			CookieSameSite:  str("AUTH_COOKIE_SAMESITE", "lax"),
		},
		Log: LogConfig{
			Level:              str("LOG_LEVEL", "info"),
			Format:             str("LOG_FORMAT", "json"),
			SkipHealthLogs:     parsed("LOG_SKIP_HEALTH", true, strconv.ParseBool),
			SlowRequestSeconds: parsed("LOG_SLOW_REQUEST_SECONDS", 5, strconv.Atoi),
		},
		Redis: RedisConfig{
			Enabled:       parsed("REDIS_ENABLED", false, strconv.ParseBool),
			Host:          str("REDIS_HOST", "localhost"),
			Port:          parsed("REDIS_PORT", 6379, strconv.Atoi),
			Password:      str("REDIS_PASSWORD", ""),
			DB:            parsed("REDIS_DB", 0, strconv.Atoi),
			PoolSize:      parsed("REDIS_POOL_SIZE", 10, strconv.Atoi),
			MinIdleConns:  parsed("REDIS_MIN_IDLE_CONNS", 2, strconv.Atoi),
			DialTimeout:   parsed("REDIS_DIAL_TIMEOUT", 5*time.Second, time.ParseDuration),
			ReadTimeout:   parsed("REDIS_READ_TIMEOUT", 3*time.Second, time.ParseDuration),
			WriteTimeout:  parsed("REDIS_WRITE_TIMEOUT", 3*time.Second, time.ParseDuration),
			TLSEnabled:    parsed("REDIS_TLS_ENABLED", false, strconv.ParseBool),
			TLSSkipVerify: parsed("REDIS_TLS_SKIP_VERIFY", false, strconv.ParseBool),
			MaxRetries:    parsed("REDIS_MAX_RETRIES", 3, strconv.Atoi),
			MinRetryDelay: parsed("REDIS_MIN_RETRY_DELAY", 100*time.Millisecond, time.ParseDuration),
			MaxRetryDelay: parsed("REDIS_MAX_RETRY_DELAY", 3*time.Second, time.ParseDuration),
		},
		Database: DatabaseConfig{
			Enabled:         parsed("DB_ENABLED", false, strconv.ParseBool),
			Host:            str("DB_HOST", "localhost"),
			Port:            parsed("DB_PORT", 5432, strconv.Atoi),
			User:            str("DB_USER", "console"),
			Password:        str("DB_PASSWORD", ""),
			Name:            str("DB_NAME", "console"),
			SSLMode:         str("DB_SSLMODE", "disable"),
			MaxOpenConns:    parsed("DB_MAX_OPEN_CONNS", 10, strconv.Atoi),
			MaxIdleConns:    parsed("DB_MAX_IDLE_CONNS", 2, strconv.Atoi),
			ConnMaxLifetime: parsed("DB_CONN_MAX_LIFETIME", 5*time.Minute, time.ParseDuration),
		},
		RateLimit: RateLimitConfig{
			Enabled:         parsed("RATE_LIMIT_ENABLED", true, strconv.ParseBool),
			RequestsPerSec:  parsed("RATE_LIMIT_RPS", 50.0, parseFloat),
			Burst:           parsed("RATE_LIMIT_BURST", 100, strconv.Atoi),
			LoginPerMinute:  parsed("RATE_LIMIT_LOGIN_PER_MINUTE", 10, strconv.Atoi),
			LoginBurst:      parsed("RATE_LIMIT_LOGIN_BURST", 5, strconv.Atoi),
			CleanupInterval: parsed("RATE_LIMIT_CLEANUP", time.Minute, time.ParseDuration),
		},
		Console: ConsoleConfig{
			SearchDebounce:  parsed("CONSOLE_SEARCH_DEBOUNCE", 500*time.Millisecond, time.ParseDuration),
			DefaultPageSize: parsed("CONSOLE_PAGE_SIZE", 10, strconv.Atoi),
			PageSizeOptions: parsed("CONSOLE_PAGE_SIZE_OPTIONS", []int{10, 25, 50, 100}, parseIntList),
			SearchMatch:     str("CONSOLE_SEARCH_MATCH", "matches"),
			SearchAccents:   parsed("CONSOLE_SEARCH_ACCENTS", false, strconv.ParseBool),
		},
		Tracing: TracingConfig{
			Enabled:     parsed("OTEL_ENABLED", false, strconv.ParseBool),
			Endpoint:    str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:    parsed("OTEL_EXPORTER_OTLP_INSECURE", true, strconv.ParseBool),
			SampleRate:  parsed("OTEL_SAMPLE_RATE", 1.0, parseFloat),
			ServiceName: str("OTEL_SERVICE_NAME", "scanner-console"),
		},
		Export: ExportConfig{
			S3Region:    str("EXPORT_S3_REGION", "us-east-1"),
			S3Endpoint:  str("EXPORT_S3_ENDPOINT", ""),
			S3AccessKey: str("EXPORT_S3_ACCESS_KEY", ""),
			S3SecretKey: str("EXPORT_S3_SECRET_KEY", ""),
			S3Bucket:    str("EXPORT_S3_BUCKET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN is the lib/pq keyword connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *RedisConfig) Addr() string  { return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) }
func (c *ServerConfig) Addr() string { return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) }

func (c *Config) IsDevelopment() bool { return c.App.Env == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.App.Env == EnvProduction }
