package handler

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	infrahttp "github.com/kartik-turing/repo-scanner-frontend/internal/infra/http"
)

// List query parameters.
const (
	paramQuery = "q"
	paramSort  = "sort"
	paramDir   = "dir"
	paramPage  = "page"
	paramSize  = "size"
	paramSel   = "sel"
)

// ListQuery is the list state carried in the URL: search text, sort, a
// one-based page number with its size, and the selected row ids.
type ListQuery struct {
	Q    string
	Sort string
	Dir  string
	Page int
	Size int
	Sel  []string
}

// ParseListQuery reads the list state from the request's query string.
func ParseListQuery(r *http.Request) ListQuery {
	q := ListQuery{
		Q:    strings.TrimSpace(infrahttp.QueryParam(r, paramQuery)),
		Sort: infrahttp.QueryParam(r, paramSort),
		Dir:  strings.ToLower(infrahttp.QueryParam(r, paramDir)),
		Page: infrahttp.QueryParamInt(r, paramPage, 1),
		Size: infrahttp.QueryParamInt(r, paramSize, 0),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	for _, id := range r.URL.Query()[paramSel] {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(q.Sel, id) {
			q.Sel = append(q.Sel, id)
		}
	}
	if console.ParseSortDir(q.Dir) == console.SortNone {
		q.Sort, q.Dir = "", ""
	}
	return q
}

// Values encodes the non-default parts of q.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set(paramQuery, q.Q)
	}
	if q.Sort != "" && q.Dir != "" {
		v.Set(paramSort, q.Sort)
		v.Set(paramDir, q.Dir)
	}
	if q.Page > 1 {
		v.Set(paramPage, strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set(paramSize, strconv.Itoa(q.Size))
	}
	if len(q.Sel) > 0 {
		v[paramSel] = q.Sel
	}
	return v
}

// URL returns base with q's query string.
func (q ListQuery) URL(base string) string {
	if enc := q.Values().Encode(); enc != "" {
		return base + "?" + enc
	}
	return base
}

// WithPage returns q on another page.
func (q ListQuery) WithPage(page int) ListQuery {
	q.Page = page
	return q
}

// WithSize returns q with another page size, back on the first page.
func (q ListQuery) WithSize(size int) ListQuery {
	q.Size = size
	q.Page = 1
	return q
}

// WithSort returns q sorted by s, back on the first page.
func (q ListQuery) WithSort(s console.SortState) ListQuery {
	if s.Active() {
		q.Sort, q.Dir = s.Key, s.Dir.String()
	} else {
		q.Sort, q.Dir = "", ""
	}
	q.Page = 1
	return q
}

// IsSelected reports whether the row id is selected.
func (q ListQuery) IsSelected(id string) bool {
	return slices.Contains(q.Sel, id)
}

// WithToggled returns q with the row id selected or deselected.
func (q ListQuery) WithToggled(id string) ListQuery {
	if q.IsSelected(id) {
		q.Sel = slices.DeleteFunc(slices.Clone(q.Sel), func(s string) bool { return s == id })
	} else {
		q.Sel = append(slices.Clone(q.Sel), id)
	}
	return q
}

// WithoutSelection returns q with nothing selected.
func (q ListQuery) WithoutSelection() ListQuery {
	q.Sel = nil
	return q
}

// Apply puts q onto a view's table: search, then sort, then page size and
// page, so that each step's page reset happens before the page is chosen.
func (q ListQuery) Apply(v *console.View) {
	v.Search(q.Q)
	v.FlushSearch()

	t := v.Table()
	t.SetSort(q.Sort, console.ParseSortDir(q.Dir))
	if q.Size > 0 {
		t.SetPageSize(q.Size)
	}
	t.SetPage(q.Page - 1)
	t.Select(q.Sel...)
}

// safeRedirect returns target when it is a local path, otherwise fallback.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}
