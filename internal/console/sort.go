package console

import "strings"

// SortDir is a column sort direction.
type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

func (d SortDir) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return ""
	}
}

// ParseSortDir parses "asc" or "desc". Anything else is SortNone.
func ParseSortDir(s string) SortDir {
	switch strings.ToLower(s) {
	case "asc":
		return SortAsc
	case "desc":
		return SortDesc
	default:
		return SortNone
	}
}

// SortState is the active single-column sort.
type SortState struct {
	Key string
	Dir SortDir
}

// Active reports whether a sort is applied.
func (s SortState) Active() bool {
	return s.Key != "" && s.Dir != SortNone
}

// compareValues orders two cell values. Numbers compare numerically, bools
// false before true, everything else by natural case-insensitive text order.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return compareFloat(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y)
		}
	}
	return naturalCompare(strings.ToLower(formatScalar(a)), strings.ToLower(formatScalar(b)))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// naturalCompare compares strings chunk by chunk so that "scan2" < "scan10".
func naturalCompare(a, b string) int {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		xd, yd := isDigits(x), isDigits(y)
		var c int
		switch {
		case xd && yd:
			c = compareDigits(x, y)
		default:
			c = strings.Compare(x, y)
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ca) < len(cb):
		return -1
	case len(ca) > len(cb):
		return 1
	default:
		return 0
	}
}

// chunks splits s into alternating runs of digits and non-digits.
func chunks(s string) []string {
	var out []string
	start := 0
	prevDigit := false
	for i, r := range s {
		d := isDigit(r)
		if i > 0 && d != prevDigit {
			out = append(out, s[start:i])
			start = i
		}
		prevDigit = d
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

// compareDigits compares two digit runs of any length numerically.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
