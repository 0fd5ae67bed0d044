package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		size      int
		wantIndex int
		wantSize  int
	}{
		{name: "defaults", index: 0, size: 0, wantIndex: 0, wantSize: DefaultSize},
		{name: "negative index", index: -3, size: 25, wantIndex: 0, wantSize: 25},
		{name: "size capped", index: 1, size: 500, wantIndex: 1, wantSize: MaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.index, tt.size)
			assert.Equal(t, tt.wantIndex, p.Index)
			assert.Equal(t, tt.wantSize, p.Size)
		})
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{101, 25, 5},
		{100, 100, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestSliceLastPageRemainder(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	last := Slice(items, New(PageCount(len(items), 10)-1, 10))
	assert.Equal(t, []int{20, 21, 22}, last)

	exact := Slice(items[:20], New(1, 10))
	assert.Len(t, exact, 10)

	clamped := Slice(items, New(99, 10))
	assert.Equal(t, last, clamped)
}

func TestResizeKeepsTopRow(t *testing.T) {
	p := New(3, 10) // rows 30..39
	r := p.Resize(25)
	assert.Equal(t, 25, r.Size)
	assert.Equal(t, 1, r.Index) // rows 25..49 contain row 30
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in     string
		want   Sort
		wantOK bool
	}{
		{in: "name", want: Sort{Field: "name"}, wantOK: true},
		{in: "-rows", want: Sort{Field: "rows", Order: SortDesc}, wantOK: true},
		{in: "+city", want: Sort{Field: "city", Order: SortAsc}, wantOK: true},
		{in: "name:DESC", want: Sort{Field: "name", Order: SortDesc}, wantOK: true},
		{in: "name:asc", want: Sort{Field: "name", Order: SortAsc}, wantOK: true},
		{in: "name:sideways", wantOK: false},
		{in: "-name:asc", wantOK: false},
		{in: ":desc", wantOK: false},
		{in: "-", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSort(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewResult(t *testing.T) {
	res := NewResult([]string{"a", "b", "c"}, New(5, 2))
	assert.Equal(t, []string{"c"}, res.Data)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 2, res.TotalPages)

	empty := NewResult([]string(nil), New(0, 10))
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFromPage(t *testing.T) {
	assert.Equal(t, Pagination{Index: 2, Size: 25}, FromPage(3, 25))
	assert.Equal(t, Pagination{Index: 0, Size: DefaultSize}, FromPage(0, 0))
}
