package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/postgres"
	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/jwt"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

// ErrRevoked is returned for a session that was signed out.
var ErrRevoked = errors.New("session revoked")

// Authenticator checks credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.User, error)
}

// Revoker remembers signed-out session ids.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountRecorder keeps a ledger of sign-ins.
type AccountRecorder interface {
	RecordLogin(ctx context.Context, a postgres.Account) error
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Session is an issued console session.
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
	Identity  jwt.Identity
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithRevoker enables sign-out revocation.
func WithRevoker(r Revoker) SessionOption {
	return func(s *SessionService) { s.revoker = r }
}

// WithAccounts enables the sign-in ledger.
func WithAccounts(a AccountRecorder) SessionOption {
	return func(s *SessionService) { s.accounts = a }
}

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// SessionService signs people in through the backend and issues console
// session tokens.
type SessionService struct {
	auth      Authenticator
	tokens    *jwt.Generator
	validator *validator.Validator
	revoker   Revoker
	accounts  AccountRecorder
	logger    *logger.Logger
	now       func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(auth Authenticator, tokens *jwt.Generator, log *logger.Logger, opts ...SessionOption) *SessionService {
	if log == nil {
		log = logger.NewNop()
	}
	s := &SessionService{
		auth:      auth,
		tokens:    tokens,
		validator: validator.New(),
		logger:    log.With("service", "session"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login validates the form, checks the credentials with the backend and
// issues a session. Rejected credentials return apiclient.ErrInvalidCredentials;
// form problems return validator.ValidationErrors.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	user, err := s.auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, apiclient.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			s.logger.Info("sign-in rejected", "email", in.Email)
			return nil, err
		}
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		s.logger.Error("operation failed", "op", "login", "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	id := jwt.Identity{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
	token, err := s.tokens.GenerateSessionToken(id)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("issue session: %w", err)
	}

	if s.accounts != nil {
		err := s.accounts.RecordLogin(ctx, postgres.Account{
			Email:       id.Email,
			Name:        id.Name,
			Role:        id.Role,
			BackendID:   id.UserID,
			LastLoginAt: s.now().UTC(),
		})
		if err != nil {
			s.logger.Warn("failed to record sign-in", "email", id.Email, "error", err)
		}
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info("signed in", "email", id.Email, "role", id.Role)
	return &Session{Token: token.Token, ID: token.ID, ExpiresAt: token.ExpiresAt, Identity: id}, nil
}

// Validate parses a session token and rejects revoked sessions.
func (s *SessionService) Validate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if s.revoker == nil {
		return claims, nil
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if revoked {
		metrics.RevokedSessionsRejected.Inc()
		return nil, ErrRevoked
	}
	return claims, nil
}

// Logout revokes the session for the rest of its lifetime. Invalid or
// expired tokens have nothing left to revoke.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	metrics.LogoutsTotal.Inc()

	claims, err := s.tokens.ValidateToken(token)
	if err != nil || s.revoker == nil {
		return nil
	}
	ttl := claims.Remaining(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID(), ttl); err != nil {
		s.logger.Error("operation failed", "op", "logout", "error", err)
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("signed out", "email", claims.Email)
	return nil
}
