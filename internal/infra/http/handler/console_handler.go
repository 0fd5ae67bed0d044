package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	infrahttp "github.com/kartik-turing/repo-scanner-frontend/internal/infra/http"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
	"github.com/kartik-turing/repo-scanner-frontend/internal/resource"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/fuzzy"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

// ConsolePrefix is the path under which entity pages are mounted.
const ConsolePrefix = "/console"

// ConsoleHandler serves the list, drawer, delete and export pages of every
// registered entity. Each request builds a fresh View from the URL state, so
// the handler itself holds no per-user state.
type ConsoleHandler struct {
	registry  *resource.Registry
	backend   console.Backend
	validator *validator.Validator
	renderer  *Renderer
	cfg       config.ConsoleConfig
	appName   string
	logger    *logger.Logger
	now       func() time.Time
	ranker    *fuzzy.Ranker
}

// ConsoleHandlerOption configures a ConsoleHandler.
type ConsoleHandlerOption func(*ConsoleHandler)

// WithConsoleClock overrides the time source used for form defaults and
// stamps.
func WithConsoleClock(now func() time.Time) ConsoleHandlerOption {
	return func(h *ConsoleHandler) { h.now = now }
}

// WithAppName sets the name shown in the page title and menu.
func WithAppName(name string) ConsoleHandlerOption {
	return func(h *ConsoleHandler) { h.appName = name }
}

// NewConsoleHandler creates a new ConsoleHandler.
func NewConsoleHandler(
	registry *resource.Registry,
	backend console.Backend,
	renderer *Renderer,
	cfg config.ConsoleConfig,
	log *logger.Logger,
	opts ...ConsoleHandlerOption,
) *ConsoleHandler {
	if log == nil {
		log = logger.NewNop()
	}
	h := &ConsoleHandler{
		registry:  registry,
		backend:   backend,
		validator: validator.New(),
		renderer:  renderer,
		cfg:       cfg,
		appName:   "Console",
		logger:    log.With("handler", "console"),
		now:       time.Now,
		ranker:    cfg.Ranker(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Index redirects to the first menu entry.
func (h *ConsoleHandler) Index(w http.ResponseWriter, r *http.Request) {
	menu := h.registry.Menu(ConsolePrefix)
	if len(menu) == 0 {
		apierror.NotFound("Page").WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
		return
	}
	http.Redirect(w, r, menu[0].Href, http.StatusFound)
}

// List renders the entity table.
func (h *ConsoleHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	q := ParseListQuery(r)
	h.refresh(r.Context(), view)
	q.Apply(view)
	h.render(w, r, http.StatusOK, view, q)
}

// New renders the table with the create drawer open.
func (h *ConsoleHandler) New(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	q := ParseListQuery(r)
	h.mount(r.Context(), view)
	q.Apply(view)
	if err := view.OpenCreate(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view, q)
}

// Edit renders the table with the edit drawer open on one row.
func (h *ConsoleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	q := ParseListQuery(r)
	h.mount(r.Context(), view)
	q.Apply(view)
	if err := view.OpenEdit(infrahttp.PathParam(r, "id")); err != nil {
		h.backToList(w, r, s, q, err)
		return
	}
	h.render(w, r, http.StatusOK, view, q)
}

// DeleteConfirm renders the table with the delete modal open on one row.
func (h *ConsoleHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	q := ParseListQuery(r)
	h.refresh(r.Context(), view)
	q.Apply(view)
	if err := view.RequestDelete(infrahttp.PathParam(r, "id")); err != nil {
		h.backToList(w, r, s, q, err)
		return
	}
	h.render(w, r, http.StatusOK, view, q)
}

// Create submits the create drawer.
func (h *ConsoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	// The create drawer never reads the collection. It is loaded only when
	// the form comes back invalid and the page is rendered.
	q := ParseListQuery(r)
	_ = view.Drawer().Mount(r.Context())
	if err := view.OpenCreate(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.submit(w, r, view, q, false)
}

// Update submits the edit drawer of one row.
func (h *ConsoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	q := ParseListQuery(r)
	h.mount(r.Context(), view)
	if err := view.OpenEdit(infrahttp.PathParam(r, "id")); err != nil {
		h.backToList(w, r, s, q, err)
		return
	}
	h.submit(w, r, view, q, true)
}

// Delete confirms the delete of one row.
func (h *ConsoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	q := ParseListQuery(r)
	h.refresh(r.Context(), view)
	if err := view.RequestDelete(infrahttp.PathParam(r, "id")); err != nil {
		h.backToList(w, r, s, q, err)
		return
	}
	// The view logs and counts a failed delete; the list is shown either way.
	_ = view.ConfirmDelete(r.Context())
	http.Redirect(w, r, q.URL(listPath(s)), http.StatusSeeOther)
}

// Export streams the filtered, sorted rows as CSV, only the selected ones
// when the query carries a selection.
func (h *ConsoleHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schema(w, r)
	if !ok {
		return
	}
	view := h.newView(s)
	defer view.Close()

	if err := view.Refresh(r.Context(), true); err != nil {
		apierror.ServiceUnavailable("Backend unavailable").
			WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
		return
	}
	q := ParseListQuery(r)
	q.Apply(view)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, s.Name))
	if err := console.ExportCSV(w, s.Columns, view.Table().ExportRows()); err != nil {
		h.logger.Error("operation failed", "op", "export", "entity", s.Name, "error", err)
		return
	}
	metrics.ExportsTotal.WithLabelValues(s.Name, "http").Inc()
}

func (h *ConsoleHandler) submit(w http.ResponseWriter, r *http.Request, view *console.View, q ListQuery, loaded bool) {
	if err := r.ParseForm(); err != nil {
		apierror.InvalidForm(err).WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
		return
	}
	view.Drawer().SetValues(formValues(r, view.Drawer().VisibleFields()))

	res, err := view.SubmitDrawer(r.Context())
	if errors.Is(err, console.ErrValidation) {
		if !loaded {
			h.refresh(r.Context(), view)
		}
		q.Apply(view)
		h.render(w, r, http.StatusUnprocessableEntity, view, q)
		return
	}
	if err == nil && res.Message != "" {
		h.logger.Info("saved", "entity", view.Schema().Name, "mode", res.Mode.String(), "message", res.Message)
	}
	http.Redirect(w, r, q.URL(listPath(view.Schema())), http.StatusSeeOther)
}

func (h *ConsoleHandler) schema(w http.ResponseWriter, r *http.Request) (*console.Schema, bool) {
	s, ok := h.registry.Lookup(infrahttp.PathParam(r, "entity"))
	if !ok {
		apierror.NotFound("Page").WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return s, true
}

func (h *ConsoleHandler) newView(s *console.Schema) *console.View {
	return console.NewView(s, h.backend, h.validator, h.logger, console.ViewConfig{
		SearchDelay: h.cfg.SearchDebounce,
		Table: console.TableOptions{
			PageSize:  h.cfg.DefaultPageSize,
			PageSizes: h.cfg.PageSizeOptions,
			Ranker:    h.ranker,
		},
		Clock: h.now,
	})
}

// refresh loads the collection. A failure is logged by the loader and the
// page renders with no rows.
func (h *ConsoleHandler) refresh(ctx context.Context, view *console.View) {
	_ = view.Refresh(ctx, true)
}

// mount loads the collection and the drawer's selector options.
func (h *ConsoleHandler) mount(ctx context.Context, view *console.View) {
	_ = view.Mount(ctx)
}

func (h *ConsoleHandler) backToList(w http.ResponseWriter, r *http.Request, s *console.Schema, q ListQuery, err error) {
	if errors.Is(err, console.ErrNotFound) {
		h.logger.Warn("row not found", "entity", s.Name, "id", infrahttp.PathParam(r, "id"))
	} else {
		h.logger.Error("operation failed", "entity", s.Name, "error", err)
	}
	http.Redirect(w, r, q.URL(listPath(s)), http.StatusSeeOther)
}

func (h *ConsoleHandler) render(w http.ResponseWriter, r *http.Request, status int, view *console.View, q ListQuery) {
	s := view.Schema()
	data := h.page(r, s.Title, s.Name, buildListPage(view, q, h.cfg.SearchDebounce))
	if err := h.renderer.Render(w, status, PageList, data); err != nil {
		h.fail(w, r, err)
	}
}

func (h *ConsoleHandler) page(r *http.Request, title, current string, content any) pageData {
	data := pageData{
		AppName: h.appName,
		Title:   title,
		CSRF:    middleware.GetCSRFToken(r.Context()),
		Content: content,
	}
	if id, ok := middleware.GetIdentity(r.Context()); ok {
		data.Identity = &id
	}
	for _, m := range h.registry.Menu(ConsolePrefix) {
		data.Menu = append(data.Menu, menuLink{Title: m.Title, Href: m.Href, Active: m.Active(current)})
	}
	return data
}

func (h *ConsoleHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("operation failed", "path", r.URL.Path, "error", err)
	apierror.InternalError(err).WriteJSONWithRequestID(w, middleware.GetRequestID(r.Context()))
}

// formValues reads the posted value of every visible field. Missing keys are
// left out so the drawer keeps its defaults.
func formValues(r *http.Request, fields []console.Field) console.Values {
	values := make(console.Values, len(fields))
	for _, f := range fields {
		if _, ok := r.PostForm[f.Key]; ok {
			values[f.Key] = r.PostForm.Get(f.Key)
		}
	}
	return values
}

func listPath(s *console.Schema) string {
	return ConsolePrefix + "/" + s.Name
}

func rowPath(s *console.Schema, id string) string {
	return listPath(s) + "/" + url.PathEscape(id)
}
