package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	infrahttp "github.com/kartik-turing/repo-scanner-frontend/internal/infra/http"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/postgres"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// SignInsPath serves the sign-in ledger to admins.
const SignInsPath = "/admin/sign-ins"

const (
	adminRole          = "admin"
	defaultSignInLimit = 20
	maxSignInLimit     = 100
)

// AccountReader reads the sign-in ledger.
type AccountReader interface {
	ListRecent(ctx context.Context, limit int) ([]postgres.Account, error)
	GetByEmail(ctx context.Context, email string) (*postgres.Account, error)
}

// SignIn is one ledger entry as sent to the client.
type SignIn struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	BackendID   string    `json:"backend_id,omitempty"`
	LastLoginAt time.Time `json:"last_login_at"`
	LoginCount  int       `json:"login_count"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// SignInList is the body of the ledger listing.
type SignInList struct {
	Data  []SignIn `json:"data"`
	Limit int      `json:"limit"`
}

// SignInHandler answers who has been using the console.
type SignInHandler struct {
	accounts AccountReader
	logger   *logger.Logger
}

// NewSignInHandler creates a SignInHandler. A nil accounts answers 503, as
// the ledger needs the database.
func NewSignInHandler(accounts AccountReader, log *logger.Logger) *SignInHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &SignInHandler{accounts: accounts, logger: log.With("handler", "sign-ins")}
}

// List handles GET /admin/sign-ins?limit=N, most recent first.
func (h *SignInHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	limit := infrahttp.QueryParamInt(r, "limit", defaultSignInLimit)
	if limit < 1 || limit > maxSignInLimit {
		h.fail(w, r, apierror.BadRequest("limit must be between 1 and 100"))
		return
	}

	accounts, err := h.accounts.ListRecent(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := SignInList{Data: make([]SignIn, 0, len(accounts)), Limit: limit}
	for _, a := range accounts {
		out.Data = append(out.Data, toSignIn(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/sign-ins/{email}.
func (h *SignInHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	email := strings.TrimSpace(infrahttp.PathParam(r, "email"))
	if email == "" {
		h.fail(w, r, apierror.BadRequest("email is required"))
		return
	}

	a, err := h.accounts.GetByEmail(r.Context(), email)
	if errors.Is(err, postgres.ErrAccountNotFound) {
		h.fail(w, r, apierror.NotFound("Account"))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSignIn(*a))
}

func (h *SignInHandler) allowed(w http.ResponseWriter, r *http.Request) bool {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok || id.Role != adminRole {
		h.fail(w, r, apierror.Forbidden("Admin role required"))
		return false
	}
	if h.accounts == nil {
		h.fail(w, r, apierror.ServiceUnavailable("Sign-in ledger requires the database"))
		return false
	}
	return true
}

func (h *SignInHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apierror.FromError(err)
	if e.Status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("operation failed", "op", "sign-ins", "error", err)
	}
	e.WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
}

func toSignIn(a postgres.Account) SignIn {
	return SignIn{
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		BackendID:   a.BackendID,
		LastLoginAt: a.LastLoginAt,
		LoginCount:  a.LoginCount,
		FirstSeenAt: a.CreatedAt,
	}
}
