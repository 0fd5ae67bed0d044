package handler

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/resource"
)

func validPartnerForm() url.Values {
	return url.Values{
		"name":           {"Fabrikam"},
		"city":           {"Lyon"},
		"address":        {"3 Rue"},
		"primaryContact": {"Fay"},
		"contactEmail":   {"fay@fabrikam.example"},
		"contactPhone":   {"555-0102"},
		"website":        {"fabrikam.com"},
	}
}

func TestConsoleHandler_Index(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/console/users", rec.Header().Get("Location"))
}

func TestConsoleHandler_UnknownEntity(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsoleHandler_List(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<h1>Partners</h1>")
	assert.Contains(t, body, "Northwind")
	assert.Contains(t, body, "Contoso")
	assert.Contains(t, body, `href="https://northwind.example"`)
	assert.Contains(t, body, "Add Partner")
	assert.Contains(t, body, `placeholder="Search"`)
	assert.Contains(t, body, "1-2 of 2")
	assert.Contains(t, body, `class="active" aria-current="page">Partners`)
	assert.NotContains(t, body, "No data available")
}

func TestConsoleHandler_ListSearch(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners?q=conto")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Contoso")
	assert.NotContains(t, body, "Northwind")
	assert.Contains(t, body, `value="conto"`)

	rec = get(h, "/console/partners?q=zzzzzz")
	assert.Contains(t, rec.Body.String(), "No data available")
}

func TestConsoleHandler_ListSortAndPage(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners?sort=name&dir=asc&size=1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	// Contoso sorts first and is alone on the page.
	assert.Contains(t, body, "Contoso")
	assert.NotContains(t, body, "Northwind")
	assert.Contains(t, body, "Page 1 of 2")
	// The next click on the sorted header reverses it.
	assert.Contains(t, body, `href="/console/partners?dir=desc&amp;size=1&amp;sort=name"`)
	assert.Contains(t, body, `href="/console/partners?dir=asc&amp;page=2&amp;size=1&amp;sort=name"`)

	rec = get(h, "/console/partners?sort=name&dir=asc&size=1&page=2")
	assert.Contains(t, rec.Body.String(), "Northwind")
}

func TestConsoleHandler_ListBackendDown(t *testing.T) {
	backend := newFakeBackend()
	backend.listErr = errors.New("connection refused")
	h := consoleRouter(t, backend)

	rec := get(h, "/console/partners")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available")
}

func TestConsoleHandler_NewDrawer(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners/new")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<h2>Add Partner</h2>")
	assert.Contains(t, body, `action="/console/partners"`)
	assert.Contains(t, body, `name="contactEmail"`)
	assert.Contains(t, body, ">Submit</button>")
	assert.Contains(t, body, ">Cancel</a>")
}

func TestConsoleHandler_Create(t *testing.T) {
	backend := newFakeBackend()
	h := consoleRouter(t, backend)

	rec := postForm(h, "/console/partners?q=north", validPartnerForm())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/partners?q=north", rec.Header().Get("Location"))

	calls := backend.writes()
	require.Len(t, calls, 1)
	assert.Equal(t, "create", calls[0].Op)
	assert.Equal(t, "partners", calls[0].Collection)
	assert.Equal(t, "Fabrikam", calls[0].Payload["name"])
	// Only the refresh after the write lists the collection.
	assert.Equal(t, 1, backend.listCount("partners"))
}

func TestConsoleHandler_CreateValidationFailure(t *testing.T) {
	backend := newFakeBackend()
	h := consoleRouter(t, backend)

	form := validPartnerForm()
	form.Set("contactEmail", "not-an-email")
	form.Del("name")

	rec := postForm(h, "/console/partners", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<h2>Add Partner</h2>")
	assert.Contains(t, body, `class="field invalid"`)
	assert.Contains(t, body, `value="Lyon"`)
	assert.Contains(t, body, "Northwind")
	assert.Empty(t, backend.writes())
	assert.Equal(t, 1, backend.listCount("partners"))
}

func TestConsoleHandler_EditDrawer(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners/p1/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<h2>Edit Partner</h2>")
	assert.Contains(t, body, `action="/console/partners/p1"`)
	assert.Contains(t, body, `value="Northwind"`)
}

func TestConsoleHandler_EditUnknownRow(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners/missing/edit?page=2")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/partners?page=2", rec.Header().Get("Location"))
}

func TestConsoleHandler_Update(t *testing.T) {
	backend := newFakeBackend()
	h := consoleRouter(t, backend)

	form := validPartnerForm()
	form.Set("name", "Northwind Traders")
	rec := postForm(h, "/console/partners/p1", form)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	calls := backend.writes()
	require.Len(t, calls, 1)
	assert.Equal(t, "update", calls[0].Op)
	assert.Equal(t, "p1", calls[0].ID)
	assert.Equal(t, "Northwind Traders", calls[0].Payload["name"])
}

func TestConsoleHandler_DeleteConfirm(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners/p2/delete")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Delete Item")
	assert.Contains(t, body, "Are you sure you want to delete this item?")
	assert.Contains(t, body, `action="/console/partners/p2/delete"`)
}

func TestConsoleHandler_Delete(t *testing.T) {
	backend := newFakeBackend()
	h := consoleRouter(t, backend)

	rec := postForm(h, "/console/partners/p2/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/partners", rec.Header().Get("Location"))

	calls := backend.writes()
	require.Len(t, calls, 1)
	assert.Equal(t, backendCall{Op: "delete", Collection: "partners", ID: "p2"}, calls[0])
}

func TestConsoleHandler_DeleteUnknownRow(t *testing.T) {
	backend := newFakeBackend()
	h := consoleRouter(t, backend)

	rec := postForm(h, "/console/partners/missing/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, backend.writes())
}

func TestConsoleHandler_Export(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners/export.csv?sort=name&dir=desc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="partners.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Company Name", records[0][0])
	assert.NotContains(t, records[0], "Actions")
	assert.Equal(t, "Northwind", records[1][0])
	assert.Equal(t, "Contoso", records[2][0])
}

func TestConsoleHandler_ExportSelected(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	rec := get(h, "/console/partners/export.csv?sel=p2&sel=missing")
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Contoso", records[1][0])
}

func TestConsoleHandler_ListSelection(t *testing.T) {
	h := consoleRouter(t, newFakeBackend())

	t.Run("nothing selected", func(t *testing.T) {
		body := get(h, "/console/partners").Body.String()
		assert.Contains(t, body, `href="/console/partners?sel=p1"`)
		assert.Contains(t, body, `aria-checked="false"`)
		assert.NotContains(t, body, "Export selected")
	})

	t.Run("one selected", func(t *testing.T) {
		body := get(h, "/console/partners?q=o&sel=p1").Body.String()
		assert.Contains(t, body, "1 selected")
		assert.Contains(t, body, `aria-checked="true"`)
		// Deselecting p1 keeps the search, selecting p2 keeps p1.
		assert.Contains(t, body, `href="/console/partners?q=o"`)
		assert.Contains(t, body, `href="/console/partners?q=o&amp;sel=p1&amp;sel=p2"`)
		assert.Contains(t, body, `href="/console/partners/export.csv?q=o&amp;sel=p1"`)
		assert.Contains(t, body, "Export selected")
	})
}

func TestConsoleHandler_ExportBackendDown(t *testing.T) {
	backend := newFakeBackend()
	backend.listErr = errors.New("connection refused")
	h := consoleRouter(t, backend)

	rec := get(h, "/console/partners/export.csv")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConsoleHandler_SearchMatchTier(t *testing.T) {
	tests := []struct {
		name      string
		match     string
		wantFound bool
	}{
		{name: "loose keeps scattered match", match: "matches", wantFound: true},
		{name: "contains drops it", match: "contains", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewConsoleHandler(
				resource.MustRegistry(),
				newFakeBackend(),
				testRenderer(t),
				config.ConsoleConfig{DefaultPageSize: 10, PageSizeOptions: []int{10}, SearchMatch: tt.match},
				nil,
			)
			r := chi.NewRouter()
			r.Get(ConsolePrefix+"/{entity}", h.List)

			body := get(r, "/console/partners?q=nwd").Body.String()
			assert.Equal(t, tt.wantFound, strings.Contains(body, "Northwind"))
		})
	}
}
