package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/postgres"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/jwt"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeAuth struct {
	user  *apiclient.User
	err   error
	calls int
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*apiclient.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	if u.Email == "" {
		u.Email = email
	}
	return &u, nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: map[string]time.Duration{}}
}

func (m *memRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

type memAccounts struct {
	logins []postgres.Account
	err    error
}

func (m *memAccounts) RecordLogin(_ context.Context, a postgres.Account) error {
	m.logins = append(m.logins, a)
	return m.err
}

func newTestService(auth Authenticator, opts ...SessionOption) *SessionService {
	gen := jwt.NewGenerator(jwt.TokenConfig{Secret: testSecret, Issuer: "scanner-console"})
	return NewSessionService(auth, gen, nil, opts...)
}

func TestSessionService_Login(t *testing.T) {
	auth := &fakeAuth{user: &apiclient.User{ID: "u1", Name: "Ada", Role: "admin"}}
	accounts := &memAccounts{}
	svc := newTestService(auth, WithAccounts(accounts))

	sess, err := svc.Login(context.Background(), LoginInput{Email: " ada@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, jwt.Identity{UserID: "u1", Name: "Ada", Email: "ada@example.com", Role: "admin"}, sess.Identity)
	assert.WithinDuration(t, time.Now().Add(jwt.DefaultSessionDuration), sess.ExpiresAt, time.Minute)

	require.Len(t, accounts.logins, 1)
	assert.Equal(t, "ada@example.com", accounts.logins[0].Email)
	assert.Equal(t, "u1", accounts.logins[0].BackendID)

	claims, err := svc.Validate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.Name)
}

func TestSessionService_LoginFailures(t *testing.T) {
	tests := []struct {
		name      string
		input     LoginInput
		authErr   error
		wantErr   error
		wantCalls int
	}{
		{name: "missing password", input: LoginInput{Email: "ada@example.com"}, wantCalls: 0},
		{name: "bad email", input: LoginInput{Email: "ada", Password: "pw"}, wantCalls: 0},
		{name: "rejected", input: LoginInput{Email: "ada@example.com", Password: "pw"},
			authErr: fmt.Errorf("%w: status 401", apiclient.ErrInvalidCredentials), wantErr: apiclient.ErrInvalidCredentials, wantCalls: 1},
		{name: "backend down", input: LoginInput{Email: "ada@example.com", Password: "pw"},
			authErr: apiclient.ErrRequest, wantErr: apiclient.ErrRequest, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{user: &apiclient.User{}, err: tt.authErr}
			svc := newTestService(auth)

			_, err := svc.Login(context.Background(), tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var verrs validator.ValidationErrors
				assert.True(t, errors.As(err, &verrs))
			}
			assert.Equal(t, tt.wantCalls, auth.calls)
		})
	}
}

func TestSessionService_LedgerFailureDoesNotBlockLogin(t *testing.T) {
	auth := &fakeAuth{user: &apiclient.User{Name: "Ada"}}
	svc := newTestService(auth, WithAccounts(&memAccounts{err: errors.New("db down")}))

	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "pw"})
	assert.NoError(t, err)
}

func TestSessionService_Logout(t *testing.T) {
	revoker := newMemRevoker()
	svc := newTestService(&fakeAuth{user: &apiclient.User{}}, WithRevoker(revoker))
	ctx := context.Background()

	sess, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	ttl, ok := revoker.revoked[sess.ID]
	require.True(t, ok)
	assert.Greater(t, ttl, 29*24*time.Hour)

	_, err = svc.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestSessionService_LogoutWithoutRevoker(t *testing.T) {
	svc := newTestService(&fakeAuth{user: &apiclient.User{}})
	ctx := context.Background()

	sess, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, sess.Token))

	_, err = svc.Validate(ctx, sess.Token)
	assert.NoError(t, err, "without a store the token stays valid until it expires")
}

func TestSessionService_LogoutInvalidToken(t *testing.T) {
	revoker := newMemRevoker()
	svc := newTestService(&fakeAuth{}, WithRevoker(revoker))

	assert.NoError(t, svc.Logout(context.Background(), "garbage"))
	assert.Empty(t, revoker.revoked)
}

func TestSessionService_ValidateStoreError(t *testing.T) {
	revoker := newMemRevoker()
	svc := newTestService(&fakeAuth{user: &apiclient.User{}}, WithRevoker(revoker))
	ctx := context.Background()

	sess, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	revoker.err = errors.New("redis down")
	_, err = svc.Validate(ctx, sess.Token)
	assert.Error(t, err)
	assert.ErrorIs(t, svc.Logout(ctx, sess.Token), revoker.err)

	_, err = svc.Validate(ctx, "garbage")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
