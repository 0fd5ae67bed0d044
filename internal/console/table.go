package console

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/fuzzy"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/pagination"
)

// Match is the per-row search metadata used for highlighting.
type Match struct {
	Rank   fuzzy.Ranking
	Column string
}

// Row is one record after filtering. Index is its position in the loaded
// collection.
type Row struct {
	Record Record
	Index  int
	Match  Match
}

// TableOptions configures a Table.
type TableOptions struct {
	PageSize  int
	PageSizes []int
	Ranker    *fuzzy.Ranker
}

// PageView is one rendered page of a Table.
type PageView struct {
	Rows []Row
	// Index is zero-based, Number one-based.
	Index  int
	Number int
	Size   int
	Count  int
	Total  int
	// Start and End are the one-based bounds of the visible rows, 0 when empty.
	Start int
	End   int
	Empty bool
	Sizes []int
}

// HasPrev reports whether a previous page exists.
func (p PageView) HasPrev() bool { return p.Index > 0 }

// HasNext reports whether a next page exists.
func (p PageView) HasNext() bool { return p.Index+1 < p.Count }

// Table filters, sorts, paginates and selects over a loaded collection. It is
// safe for concurrent use; the search debouncer applies filters from its own
// goroutine.
type Table struct {
	columns []Column
	ranker  *fuzzy.Ranker
	sizes   []int

	mu       sync.Mutex
	rows     []Record
	query    string
	sort     SortState
	page     pagination.Pagination
	selected map[string]bool
}

// NewTable creates an unsorted, unfiltered table on the first page.
func NewTable(columns []Column, opts TableOptions) *Table {
	sizes := opts.PageSizes
	if len(sizes) == 0 {
		sizes = pagination.SizeOptions
	}
	size := opts.PageSize
	if !containsInt(sizes, size) {
		size = sizes[0]
	}
	ranker := opts.Ranker
	if ranker == nil {
		ranker = fuzzy.New()
	}
	return &Table{
		columns:  columns,
		ranker:   ranker,
		sizes:    sizes,
		page:     pagination.New(0, size),
		selected: make(map[string]bool),
	}
}

// SetRows replaces the data. The page is reset and selections of ids that no
// longer exist are dropped.
func (t *Table) SetRows(rows []Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = rows
	t.page.Index = 0

	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.ID()] = true
	}
	for id := range t.selected {
		if !present[id] {
			delete(t.selected, id)
		}
	}
}

// SetFilter sets the global search text. A changed query resets the page.
func (t *Table) SetFilter(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if query == t.query {
		return
	}
	t.query = query
	t.page.Index = 0
}

// Filter returns the applied search text.
func (t *Table) Filter() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// ToggleSort cycles the sort of one column. The first click sorts text
// ascending and numbers or booleans descending, the second reverses and the
// third clears.
func (t *Table) ToggleSort(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	col, ok := t.column(key)
	if !ok || col.NoSort {
		return
	}
	next := t.nextSort(key)
	t.setSort(next.Key, next.Dir)
}

// NextSort returns the sort ToggleSort(key) would apply, without applying it.
// Unsortable columns return the current sort.
func (t *Table) NextSort(key string) SortState {
	t.mu.Lock()
	defer t.mu.Unlock()

	col, ok := t.column(key)
	if !ok || col.NoSort {
		return t.sort
	}
	return t.nextSort(key)
}

func (t *Table) nextSort(key string) SortState {
	if t.sort.Key != key || !t.sort.Active() {
		return SortState{Key: key, Dir: t.firstDir(key)}
	}
	if t.sort.Dir == t.firstDir(key) {
		return SortState{Key: key, Dir: reverse(t.sort.Dir)}
	}
	return SortState{}
}

// SetSort applies a sort directly. Unknown or unsortable columns are ignored.
func (t *Table) SetSort(key string, dir SortDir) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if dir == SortNone || key == "" {
		t.setSort("", SortNone)
		return
	}
	col, ok := t.column(key)
	if !ok || col.NoSort {
		return
	}
	t.setSort(key, dir)
}

func (t *Table) setSort(key string, dir SortDir) {
	next := SortState{Key: key, Dir: dir}
	if next != t.sort {
		t.sort = next
		t.page.Index = 0
	}
}

// Sort returns the active sort.
func (t *Table) Sort() SortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sort
}

// SetPageSize changes the page size, keeping the first visible row on
// screen. Sizes outside the options are ignored.
func (t *Table) SetPageSize(size int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !containsInt(t.sizes, size) {
		return false
	}
	t.page = t.page.Resize(size)
	return true
}

// SetPage moves to a zero-based page index, clamped to the filtered rows.
func (t *Table) SetPage(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.page.Index = index
	t.page = t.page.Clamp(len(t.filtered()))
}

// Page returns the current page of filtered, sorted rows.
func (t *Table) Page() PageView {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.filtered()
	p := t.page.Clamp(len(rows))
	t.page = p
	res := pagination.NewResult(rows, p)

	view := PageView{
		Rows:   res.Data,
		Index:  p.Index,
		Number: res.Page,
		Size:   res.PerPage,
		Count:  res.TotalPages,
		Total:  res.Total,
		Empty:  res.Total == 0,
		Sizes:  t.sizes,
	}
	if n := len(res.Data); n > 0 {
		view.Start = p.Offset() + 1
		view.End = p.Offset() + n
	}
	return view
}

// Filtered returns every row that passes the filter, in sort order.
func (t *Table) Filtered() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filtered()
}

// Toggle flips the selection of a row id.
func (t *Table) Toggle(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.selected[id] {
		delete(t.selected, id)
		return
	}
	t.selected[id] = true
}

// IsSelected reports whether id is selected.
func (t *Table) IsSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected[id]
}

// Selected returns the selected ids in collection order.
func (t *Table) Selected() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.selected))
	for _, r := range t.rows {
		if id := r.ID(); t.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// Select marks ids as selected. Ids not in the collection are ignored.
func (t *Table) Select(ids ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range ids {
		for _, r := range t.rows {
			if r.ID() == id {
				t.selected[id] = true
				break
			}
		}
	}
}

// ClearSelection deselects every row.
func (t *Table) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.selected)
}

// ExportRows returns the selected rows that pass the filter, in sort order.
// With nothing selected it returns every filtered row.
func (t *Table) ExportRows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.filtered()
	if len(t.selected) == 0 {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if t.selected[r.Record.ID()] {
			out = append(out, r)
		}
	}
	return out
}

// Columns returns the declared columns.
func (t *Table) Columns() []Column {
	return t.columns
}

func (t *Table) filtered() []Row {
	out := make([]Row, 0, len(t.rows))
	for i, r := range t.rows {
		m, ok := t.match(r)
		if !ok {
			continue
		}
		out = append(out, Row{Record: r, Index: i, Match: m})
	}
	if t.sort.Active() {
		key, desc := t.sort.Key, t.sort.Dir == SortDesc
		sort.SliceStable(out, func(i, j int) bool {
			return less(out[i].Record, out[j].Record, key, desc)
		})
	}
	return out
}

func (t *Table) match(r Record) (Match, bool) {
	if t.query == "" {
		return Match{}, true
	}
	var best Match
	passed := false
	for _, c := range t.columns {
		if c.Actions || c.NoFilter {
			continue
		}
		text, ok := searchable(r[c.Key])
		if !ok {
			continue
		}
		m := t.ranker.RankItem(text, t.query)
		if m.Passed && (!passed || m.Rank > best.Rank) {
			best = Match{Rank: m.Rank, Column: c.Key}
			passed = true
		}
	}
	return best, passed
}

// searchable returns the text of string and numeric cells.
func searchable(v any) (string, bool) {
	switch v.(type) {
	case string, float64, float32, int, int64, json.Number:
		return formatScalar(v), true
	default:
		return "", false
	}
}

// less orders missing values after present ones; desc inverts the whole order.
func less(a, b Record, key string, desc bool) bool {
	av, aok := a.Value(key)
	bv, bok := b.Value(key)
	var c int
	switch {
	case !aok && !bok:
		c = 0
	case !aok:
		c = 1
	case !bok:
		c = -1
	default:
		c = compareValues(av, bv)
	}
	if desc {
		return c > 0
	}
	return c < 0
}

func (t *Table) firstDir(key string) SortDir {
	for _, r := range t.rows {
		v, ok := r.Value(key)
		if !ok {
			continue
		}
		switch v.(type) {
		case float64, bool:
			return SortDesc
		}
		return SortAsc
	}
	return SortAsc
}

func (t *Table) column(key string) (Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func reverse(d SortDir) SortDir {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
