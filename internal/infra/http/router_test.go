package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string, order *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("outer", &order), nil, tag("inner", &order))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestChiRouter(t *testing.T) {
	r := NewChiRouter()
	var order []string
	r.Use(tag("global", &order))

	r.GET("/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(PathParam(req, "id") + ":" + QueryParam(req, "q")))
	}, tag("route", &order))
	r.Group("/admin", func(g Router) {
		g.POST("/things", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	}, tag("group", &order))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42/?q=x", nil))
	assert.Equal(t, "42:x", rec.Body.String())
	assert.Equal(t, []string{"global", "route"}, order)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/items/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	order = nil
	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/things", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"global", "group"}, order)
}

func TestQueryParamInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&size=abc", nil)
	assert.Equal(t, 3, QueryParamInt(req, "page", 1))
	assert.Equal(t, 10, QueryParamInt(req, "size", 10))
	assert.Equal(t, 7, QueryParamInt(req, "missing", 7))
}

func testRoutes() RouteStats {
	r := NewChiRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.GET("/login", noop)
	r.POST("/login", noop)
	r.Group("/console", func(g Router) {
		g.GET("/{entity}", noop)
		g.POST("/{entity}/{id}/delete", noop)
	})
	return CollectRoutes(r)
}

func TestCollectRoutes(t *testing.T) {
	stats := testRoutes()

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[string]int{"GET": 2, "POST": 2}, stats.Methods)
}

func TestPrintRoutes(t *testing.T) {
	stats := testRoutes()

	t.Run("json filtered by method", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintRoutes(&buf, stats, RouteFormatJSON, RouteFilters{Method: "post"}))

		var out RouteStats
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out.Routes, 2)
		assert.Equal(t, "/console/{entity}/{id}/delete", out.Routes[0].Path)
		assert.Equal(t, "/login", out.Routes[1].Path)
	})

	t.Run("csv filtered by path", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintRoutes(&buf, stats, RouteFormatCSV, RouteFilters{Path: "console"}))

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"method", "path", "handler"}, rows[0])
	})

	t.Run("simple sorted by method", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintRoutes(&buf, stats, RouteFormatSimple, RouteFilters{SortBy: "method"}))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "GET"))
		assert.True(t, strings.HasPrefix(lines[3], "POST"))
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintRoutes(&buf, stats, RouteFormatTable, RouteFilters{}))
		assert.Contains(t, buf.String(), "Console routes: 4 (GET 2, POST 2)")
		assert.Contains(t, buf.String(), "Showing 4 of 4 routes")
	})
}
