package config

import (
	"os"
	"strconv"
	"strings"
)

// str returns the variable's value, or def when it is unset or empty.
func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parsed converts the variable with parse. Unset, empty or unparsable
// values yield def.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// parseIntList reads "10, 25,50". Blank items are skipped; any other bad
// item fails the whole list.
func parseIntList(s string) ([]int, error) {
	var out []int
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, strconv.ErrSyntax
	}
	return out, nil
}
