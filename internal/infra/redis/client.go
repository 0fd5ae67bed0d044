package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Client is the small key/value surface the console needs from Redis:
// presence checks and expiring markers for revoked sessions.
type Client struct {
	rdb *redis.Client
	log *logger.Logger
}

// New dials Redis and blocks until a ping succeeds or the retry budget in
// cfg is spent.
func New(cfg *config.RedisConfig, log *logger.Logger) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("redis config is required")
	case log == nil:
		return nil, errors.New("logger is required")
	}

	rdb := redis.NewClient(clientOptions(cfg))
	if cfg.TLSEnabled {
		log.Info("redis TLS enabled", "skip_verify", cfg.TLSSkipVerify)
	}

	attempts := cfg.MaxRetries + 1
	if err := waitReady(rdb, cfg, log, attempts); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable at %s after %d attempts: %w", cfg.Addr(), attempts, err)
	}
	log.Info("redis connected", "addr", cfg.Addr(), "pool_size", cfg.PoolSize)
	return &Client{rdb: rdb, log: log}, nil
}

func clientOptions(cfg *config.RedisConfig) *redis.Options {
	o := &redis.Options{
		Addr:            cfg.Addr(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryDelay,
		MaxRetryBackoff: cfg.MaxRetryDelay,
	}
	if cfg.TLSEnabled {
		o.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TLSSkipVerify, //nolint:gosec // dev only, rejected in production config
		}
	}
	return o
}

func waitReady(rdb *redis.Client, cfg *config.RedisConfig, log *logger.Logger, attempts int) error {
	var err error
	for i := range attempts {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		wait := retryDelay(i, cfg.MinRetryDelay, cfg.MaxRetryDelay)
		log.Warn("redis ping failed", "attempt", i+1, "of", attempts, "retry_in", wait, "error", err)
		time.Sleep(wait)
	}
	return err
}

// retryDelay doubles min per attempt and caps the result at max.
func retryDelay(attempt int, minDelay, maxDelay time.Duration) time.Duration {
	d := minDelay << attempt
	if d <= 0 || d > maxDelay {
		return maxDelay
	}
	return d
}

// Ping reports whether Redis answers. It backs the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Set writes key with an expiry; a zero ttl keeps it forever.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrKeyRequired
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n == 1, nil
}

func (c *Client) Close() error {
	c.log.Info("closing redis connection")
	return c.rdb.Close()
}
