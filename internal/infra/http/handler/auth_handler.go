package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/kartik-turing/repo-scanner-frontend/internal/app"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

// Sign-in page messages.
const (
	msgInvalidCredentials = "Invalid email or password."
	msgLoginUnavailable   = "Sign-in is unavailable right now. Try again later."
)

// SessionManager issues and revokes console sessions.
type SessionManager interface {
	Login(ctx context.Context, in app.LoginInput) (*app.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves the sign-in page and the sign-in and sign-out actions.
type AuthHandler struct {
	sessions SessionManager
	renderer *Renderer
	cookie   CookieConfig
	appName  string
	logger   *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions SessionManager, renderer *Renderer, cookie CookieConfig, appName string, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{
		sessions: sessions,
		renderer: renderer,
		cookie:   cookie,
		appName:  appName,
		logger:   log.With("handler", "auth"),
	}
}

type loginPage struct {
	Email  string
	Next   string
	Error  string
	Errors map[string]string
}

// LoginPage renders the sign-in form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, loginPage{Next: safeRedirect(r.URL.Query().Get("next"), "")})
}

// Login checks the credentials with the backend, stores the session cookie
// and redirects to the page that asked for a sign-in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierror.InvalidForm(err).WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
		return
	}
	form := loginPage{
		Email: r.PostForm.Get("email"),
		Next:  safeRedirect(r.PostForm.Get("next"), ""),
	}

	sess, err := h.sessions.Login(r.Context(), app.LoginInput{
		Email:    form.Email,
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			form.Errors = verrs.ByField()
			h.render(w, r, http.StatusUnprocessableEntity, form)
		case errors.Is(err, apiclient.ErrInvalidCredentials):
			form.Error = msgInvalidCredentials
			h.render(w, r, http.StatusUnauthorized, form)
		default:
			form.Error = msgLoginUnavailable
			h.render(w, r, http.StatusBadGateway, form)
		}
		return
	}

	SetSessionCookie(w, sess.Token, sess.ExpiresAt, h.cookie)
	http.Redirect(w, r, safeRedirect(form.Next, "/"), http.StatusSeeOther)
}

// Logout revokes the session and clears the cookie. A revocation failure is
// logged; the cookie is cleared regardless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := SessionToken(r, h.cookie); token != "" {
		if err := h.sessions.Logout(r.Context(), token); err != nil {
			h.logger.WithContext(r.Context()).Error("operation failed", "op", "logout", "error", err)
		}
	}
	ClearSessionCookie(w, h.cookie)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, form loginPage) {
	data := pageData{
		AppName: h.appName,
		Title:   "Sign in",
		CSRF:    middleware.GetCSRFToken(r.Context()),
		Content: form,
	}
	if err := h.renderer.Render(w, status, PageLogin, data); err != nil {
		h.logger.Error("operation failed", "op", "render login", "error", err)
		apierror.InternalError(err).WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
	}
}
