package redis

import "errors"

// Redis-specific errors.
var (
	// ErrKeyRequired is returned for an empty key.
	ErrKeyRequired = errors.New("redis: key is required")

	// ErrInvalidTTL is returned for a non-positive expiry.
	ErrInvalidTTL = errors.New("redis: ttl must be positive")
)
