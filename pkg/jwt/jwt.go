// Package jwt provides session token generation and validation utilities.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
	// ErrEmptyEmail is returned when the session identity has no email.
	ErrEmptyEmail = errors.New("email cannot be empty")
	// ErrEmptySecret is returned when the signing secret is empty.
	ErrEmptySecret = errors.New("secret cannot be empty")
)

// DefaultSessionDuration is the lifetime of a console session.
const DefaultSessionDuration = 30 * 24 * time.Hour

// Identity is the signed-in user as returned by the backend login endpoint.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// Claims represents the session JWT claims.
type Claims struct {
	UserID string `json:"uid,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`

	jwt.RegisteredClaims
}

// Identity returns the user carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}

// TokenID returns the jti.
func (c *Claims) TokenID() string {
	return c.ID
}

// Remaining returns how long the token stays valid, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// TokenConfig holds configuration for token generation.
type TokenConfig struct {
	Secret          string
	Issuer          string
	SessionDuration time.Duration
}

// SessionToken is a signed session token and its metadata.
type SessionToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Generator handles JWT token generation and validation.
type Generator struct {
	config TokenConfig
	now    func() time.Time
}

// NewGenerator creates a new token generator.
func NewGenerator(config TokenConfig) *Generator {
	if config.SessionDuration <= 0 {
		config.SessionDuration = DefaultSessionDuration
	}
	return &Generator{config: config, now: time.Now}
}

// GenerateSessionToken issues an HS256 token for the identity with a fresh jti.
func (g *Generator) GenerateSessionToken(id Identity) (*SessionToken, error) {
	if id.Email == "" {
		return nil, ErrEmptyEmail
	}
	if g.config.Secret == "" {
		return nil, ErrEmptySecret
	}

	now := g.now()
	expiresAt := now.Add(g.config.SessionDuration)
	jti := uuid.NewString()

	subject := id.UserID
	if subject == "" {
		subject = id.Email
	}

	claims := Claims{
		UserID: id.UserID,
		Name:   id.Name,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    g.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(g.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &SessionToken{Token: signedToken, ID: jti, ExpiresAt: expiresAt}, nil
}

// ValidateToken validates the token signature, expiry and issuer.
func (g *Generator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
	}
	if g.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.config.Issuer))
	}
	return validate(tokenString, g.config.Secret, opts...)
}

// ValidateToken validates the token and returns the claims.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	return validate(tokenString, secret, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
}

func validate(tokenString, secret string, opts ...jwt.ParserOption) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
