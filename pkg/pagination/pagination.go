// Package pagination provides page math over in-memory result sets.
package pagination

import "strings"

// DefaultSize is the page size used when none is given.
const DefaultSize = 10

// MaxSize caps any requested page size.
const MaxSize = 100

// SizeOptions are the page sizes offered for selection.
var SizeOptions = []int{10, 25, 50, 100}

// Pagination holds a zero-based page index and a page size.
type Pagination struct {
	Index int
	Size  int
}

// New creates a Pagination with defaults applied.
func New(index, size int) Pagination {
	if index < 0 {
		index = 0
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Pagination{Index: index, Size: size}
}

// FromPage builds a Pagination from a one-based page number.
func FromPage(page, size int) Pagination {
	return New(page-1, size)
}

// Offset returns the index of the first row on the page.
func (p Pagination) Offset() int {
	return p.Index * p.Size
}

// Page returns the one-based page number.
func (p Pagination) Page() int {
	return p.Index + 1
}

// PageCount returns ceil(total/size).
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / size
	if total%size > 0 {
		pages++
	}
	return pages
}

// Clamp moves the index into [0, pages-1] for the given total.
func (p Pagination) Clamp(total int) Pagination {
	pages := PageCount(total, p.Size)
	switch {
	case pages == 0:
		p.Index = 0
	case p.Index >= pages:
		p.Index = pages - 1
	case p.Index < 0:
		p.Index = 0
	}
	return p
}

// Bounds returns the half-open row range [start, end) of the page.
func (p Pagination) Bounds(total int) (int, int) {
	p = p.Clamp(total)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return start, end
}

// Resize changes the page size while keeping the first visible row on screen.
func (p Pagination) Resize(size int) Pagination {
	top := p.Offset()
	n := New(0, size)
	n.Index = top / n.Size
	return n
}

// Slice returns the rows of items that fall on page p.
func Slice[T any](items []T, p Pagination) []T {
	start, end := p.Bounds(len(items))
	return items[start:end]
}

// SortOrder represents the sort direction. The zero value leaves the
// direction to the caller.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort represents a single-column sort.
type Sort struct {
	Field string
	Order SortOrder
}

// ParseSort parses "-field" or "field:desc" (descending), "+field" or
// "field:asc" (ascending) and a bare "field", which leaves Order empty.
// The second result is false for an empty field or an unknown direction.
func ParseSort(s string) (Sort, bool) {
	s = strings.TrimSpace(s)
	var order SortOrder
	switch {
	case strings.HasPrefix(s, "-"):
		order = SortDesc
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		order = SortAsc
		s = s[1:]
	}
	if field, dir, ok := strings.Cut(s, ":"); ok {
		if order != "" {
			return Sort{}, false
		}
		switch SortOrder(strings.ToLower(dir)) {
		case SortAsc:
			order = SortAsc
		case SortDesc:
			order = SortDesc
		default:
			return Sort{}, false
		}
		s = field
	}
	if s == "" {
		return Sort{}, false
	}
	return Sort{Field: s, Order: order}, true
}

// Result represents one page of a result set.
type Result[T any] struct {
	Data       []T `json:"data" yaml:"data"`
	Total      int `json:"total" yaml:"total"`
	Page       int `json:"page" yaml:"page"`
	PerPage    int `json:"per_page" yaml:"per_page"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// NewResult slices items to page p and reports totals.
func NewResult[T any](items []T, p Pagination) Result[T] {
	p = p.Clamp(len(items))
	data := Slice(items, p)
	if data == nil {
		data = make([]T, 0)
	}
	return Result[T]{
		Data:       data,
		Total:      len(items),
		Page:       p.Page(),
		PerPage:    p.Size,
		TotalPages: PageCount(len(items), p.Size),
	}
}
