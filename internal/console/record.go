// Package console is the headless list/form engine behind every entity page.
//
// A Schema declares an entity's columns and fields. From it the package
// builds a Loader (collection fetch + loading flag), a Table (fuzzy filter,
// sort, pagination, selection), a Drawer (create/edit form with validation),
// a DeleteModal and a View that wires them into one state machine. Nothing
// here renders; the web console and the CLI both drive the same types.
package console

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one entity as returned by the backend.
type Record map[string]any

// ID returns the server-assigned id, or "" for a record that was never saved.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	return formatScalar(r["id"])
}

// Value returns the raw value at key.
func (r Record) Value(key string) (any, bool) {
	v, ok := r[key]
	return v, ok && v != nil
}

// String returns the value at key as plain text.
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	return formatScalar(r[key])
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Records converts raw backend rows.
func Records(rows []map[string]any) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = Record(row)
	}
	return out
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, formatScalar(e))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// displayTimeLayout renders timestamps as "Jan 2, 2006, 3:04 PM".
const displayTimeLayout = "Jan 2, 2006, 3:04 PM"

// formatDateTime renders an ISO timestamp for display. Unparseable values pass through.
func formatDateTime(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(displayTimeLayout)
		}
	}
	return s
}
