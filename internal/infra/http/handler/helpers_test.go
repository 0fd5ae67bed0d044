package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/resource"
	"github.com/kartik-turing/repo-scanner-frontend/web"
)

var testNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

type backendCall struct {
	Op         string
	Collection string
	ID         string
	Payload    map[string]any
}

// fakeBackend serves canned collections and records writes.
type fakeBackend struct {
	mu      sync.Mutex
	data    map[string][]map[string]any
	listErr error
	message string
	calls   []backendCall
	lists   map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		data: map[string][]map[string]any{
			"partners": {
				{"id": "p1", "name": "Northwind", "city": "Seattle", "address": "1 Main St",
					"primaryContact": "Nancy", "contactEmail": "nancy@northwind.example", "contactPhone": "555-0100",
					"website": "northwind.example", "createdAt": "2024-01-02T09:15:00.000Z"},
				{"id": "p2", "name": "Contoso", "city": "Redmond", "address": "2 Side St",
					"primaryContact": "Carl", "contactEmail": "carl@contoso.example", "contactPhone": "555-0101",
					"website": "https://contoso.example"},
			},
		},
		message: "saved",
	}
}

func (f *fakeBackend) List(_ context.Context, collection string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lists == nil {
		f.lists = make(map[string]int)
	}
	f.lists[collection]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	rows := f.data[collection]
	out := make([]map[string]any, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeBackend) Create(_ context.Context, collection string, payload map[string]any) (*apiclient.WriteResult, error) {
	f.record(backendCall{Op: "create", Collection: collection, Payload: payload})
	return &apiclient.WriteResult{Message: f.message}, nil
}

func (f *fakeBackend) Update(_ context.Context, collection, id string, payload map[string]any) (*apiclient.WriteResult, error) {
	f.record(backendCall{Op: "update", Collection: collection, ID: id, Payload: payload})
	return &apiclient.WriteResult{Message: f.message}, nil
}

func (f *fakeBackend) Delete(_ context.Context, collection, id string) error {
	f.record(backendCall{Op: "delete", Collection: collection, ID: id})
	return nil
}

func (f *fakeBackend) record(c backendCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) listCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[collection]
}

func (f *fakeBackend) writes() []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]backendCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(web.Templates)
	require.NoError(t, err)
	return r
}

// consoleRouter mounts h the way the console routes do, without the session
// and CSRF middleware.
func consoleRouter(t *testing.T, backend *fakeBackend) http.Handler {
	t.Helper()
	h := NewConsoleHandler(
		resource.MustRegistry(),
		backend,
		testRenderer(t),
		config.ConsoleConfig{SearchDebounce: 500 * time.Millisecond, DefaultPageSize: 10, PageSizeOptions: []int{1, 10, 25}},
		nil,
		WithConsoleClock(func() time.Time { return testNow }),
	)

	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Route(ConsolePrefix, func(r chi.Router) {
		r.Get("/{entity}", h.List)
		r.Post("/{entity}", h.Create)
		r.Get("/{entity}/new", h.New)
		r.Get("/{entity}/export.csv", h.Export)
		r.Get("/{entity}/{id}/edit", h.Edit)
		r.Post("/{entity}/{id}", h.Update)
		r.Get("/{entity}/{id}/delete", h.DeleteConfirm)
		r.Post("/{entity}/{id}/delete", h.Delete)
	})
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
