package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/jwt"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Session context keys.
const (
	UserIDKey                     = logger.ContextKeyUserID
	identityKey logger.ContextKey = "identity"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// SessionValidator checks a session token.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*jwt.Claims, error)
}

// GetIdentity returns the signed-in user.
func GetIdentity(ctx context.Context) (jwt.Identity, bool) {
	id, ok := ctx.Value(identityKey).(jwt.Identity)
	return id, ok
}

// WithIdentity stores the signed-in user in ctx.
func WithIdentity(ctx context.Context, id jwt.Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, UserIDKey, id.UserID)
}

// Session requires a valid session cookie. Requests without one are
// redirected to the sign-in page; GET requests carry their URL in "next".
func Session(v SessionValidator, cookieName string, log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("middleware", "session")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				redirectToLogin(w, r)
				return
			}

			claims, err := v.Validate(r.Context(), c.Value)
			if err != nil {
				log.Debug("session rejected", "path", r.URL.Path, "error", err)
				RecordSecurityEvent(SecurityEventSessionDenied)
				redirectToLogin(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
