package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

const prefixRevoked = "revoked"

// KeyValue is the subset of Client the session store uses.
type KeyValue interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SessionStore keeps the ids of signed-out sessions until their tokens
// would have expired anyway.
type SessionStore struct {
	kv     KeyValue
	logger *logger.Logger
}

// NewSessionStore creates a session store.
func NewSessionStore(kv KeyValue, log *logger.Logger) (*SessionStore, error) {
	if kv == nil {
		return nil, errors.New("redis client is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &SessionStore{kv: kv, logger: log}, nil
}

// Revoke marks a session id as signed out for ttl.
func (s *SessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return ErrKeyRequired
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := s.kv.Set(ctx, revokedKey(jti), "1", ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Debug("session revoked", "jti", jti, "ttl", ttl)
	return nil
}

// IsRevoked reports whether a session id was signed out.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, ErrKeyRequired
	}
	ok, err := s.kv.Exists(ctx, revokedKey(jti))
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return ok, nil
}

func revokedKey(jti string) string {
	return prefixRevoked + ":" + jti
}
