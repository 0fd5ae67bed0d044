package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{name: "numbers", a: float64(2), b: float64(10), want: -1},
		{name: "equal numbers", a: float64(3), b: float64(3), want: 0},
		{name: "bools", a: false, b: true, want: -1},
		{name: "case insensitive", a: "alpha", b: "Beta", want: -1},
		{name: "natural digits", a: "scan2", b: "scan10", want: -1},
		{name: "leading zeros", a: "v007", b: "v7", want: 0},
		{name: "prefix shorter first", a: "scan", b: "scan1", want: -1},
		{name: "mixed types fall back to text", a: float64(5), b: "10", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareValues(tt.a, tt.b))
			assert.Equal(t, -tt.want, compareValues(tt.b, tt.a))
		})
	}
}

func TestParseSortDir(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortDir("ASC"))
	assert.Equal(t, SortDesc, ParseSortDir("desc"))
	assert.Equal(t, SortNone, ParseSortDir("sideways"))
	assert.Equal(t, "desc", SortDesc.String())
	assert.False(t, SortState{Key: "name"}.Active())
}
