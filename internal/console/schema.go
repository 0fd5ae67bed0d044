package console

import (
	"errors"
	"fmt"
	"time"
)

// Mode is the drawer mode. It drives per-field visibility.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Kind selects how a field is rendered, validated and encoded.
type Kind int

const (
	KindText Kind = iota
	KindTextarea
	KindNumber
	KindBool
	KindSelect
	KindDatetime
	KindList // comma separated, sent as an array of trimmed strings
	KindPassword
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindTextarea: "textarea",
	KindNumber:   "number",
	KindBool:     "bool",
	KindSelect:   "select",
	KindDatetime: "datetime",
	KindList:     "list",
	KindPassword: "password",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// OptionsSource fills a select from another collection. Option values are ids,
// labels come from LabelKey.
type OptionsSource struct {
	Collection string
	LabelKey   string
}

// DefaultFunc computes a field default at form reset. values holds the
// defaults computed so far, in field order.
type DefaultFunc func(now time.Time, values Values) string

// Field declares one form input.
type Field struct {
	Key         string
	Label       string
	Kind        Kind
	Placeholder string
	Required    bool
	// Min is the lower bound of a number field.
	Min float64
	// Rules are extra validator tags checked on non-empty values, e.g. "email".
	Rules string
	// CreateOnly fields are relationships: hidden in edit mode, never PATCHed.
	CreateOnly  bool
	Options     []Option
	OptionsFrom *OptionsSource
	Default     string
	DefaultFunc DefaultFunc
}

// Visible reports whether the field is shown in mode m.
func (f Field) Visible(m Mode) bool {
	return !(f.CreateOnly && m == ModeEdit)
}

// IsSelect reports whether the field renders as a dropdown.
func (f Field) IsSelect() bool {
	return f.Kind == KindSelect || f.Kind == KindBool || f.OptionsFrom != nil
}

// ColumnFormat controls how a cell is displayed.
type ColumnFormat int

const (
	FormatText ColumnFormat = iota
	FormatDateTime
	FormatLink
)

// Column declares one list column.
type Column struct {
	Key    string
	Header string
	Format ColumnFormat
	// NoSort disables header sorting.
	NoSort bool
	// NoFilter excludes the column from the global search.
	NoFilter bool
	// Actions marks the trailing edit/delete column. It holds no data.
	Actions bool
}

// Display returns the cell text of r for this column.
func (c Column) Display(r Record) string {
	s := r.String(c.Key)
	if c.Format == FormatDateTime {
		return formatDateTime(s)
	}
	return s
}

// Href returns the link target of a FormatLink cell.
func (c Column) Href(r Record) string {
	s := r.String(c.Key)
	if s == "" || c.Format != FormatLink {
		return ""
	}
	if len(s) >= 4 && s[:4] == "http" {
		return s
	}
	return "https://" + s
}

// ActionsColumn is the trailing non-sortable column of every list.
var ActionsColumn = Column{Key: "actions", Header: "Actions", NoSort: true, NoFilter: true, Actions: true}

// StampKind selects how an automatic payload field is computed.
type StampKind int

const (
	// StampNow is always the submit time.
	StampNow StampKind = iota
	// StampKeep is the item's value when editing, otherwise the submit time.
	StampKeep
	// StampValueOrNow is the form value, or the submit time when empty.
	StampValueOrNow
)

// Stamp is an automatic payload field.
type Stamp struct {
	Key  string
	Kind StampKind
}

// Schema declares one entity page.
type Schema struct {
	// Name is the route segment, e.g. "db-dumps".
	Name string
	// Title is the page heading, e.g. "DB Dumps".
	Title string
	// Singular names one item in drawer headings, e.g. "DB Dump".
	Singular string
	// Collection is the backend collection, e.g. "db-dumps".
	Collection string
	Columns    []Column
	Fields     []Field
	Stamps     []Stamp
}

// Field returns the field declared under key.
func (s *Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Column returns the column declared under key.
func (s *Schema) Column(key string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// VisibleFields returns the fields shown in mode m, in declaration order.
func (s *Schema) VisibleFields(m Mode) []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Visible(m) {
			out = append(out, f)
		}
	}
	return out
}

// DataColumns returns the columns that hold data, without the actions column.
func (s *Schema) DataColumns() []Column {
	out := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.Actions {
			out = append(out, c)
		}
	}
	return out
}

// SideFetches returns the distinct related collections the drawer needs.
func (s *Schema) SideFetches() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range s.Fields {
		if f.OptionsFrom == nil || seen[f.OptionsFrom.Collection] {
			continue
		}
		seen[f.OptionsFrom.Collection] = true
		out = append(out, f.OptionsFrom.Collection)
	}
	return out
}

// ErrInvalidSchema is returned by Check.
var ErrInvalidSchema = errors.New("invalid schema")

// Check reports declaration mistakes: missing names, duplicate keys, selects
// without options.
func (s *Schema) Check() error {
	if s.Name == "" || s.Collection == "" {
		return fmt.Errorf("%w: name and collection are required", ErrInvalidSchema)
	}
	keys := make(map[string]bool)
	for _, f := range s.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: %s: field without key", ErrInvalidSchema, s.Name)
		}
		if keys[f.Key] {
			return fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidSchema, s.Name, f.Key)
		}
		keys[f.Key] = true
		if f.Kind == KindSelect && len(f.Options) == 0 && f.OptionsFrom == nil {
			return fmt.Errorf("%w: %s: select %q has no options", ErrInvalidSchema, s.Name, f.Key)
		}
	}
	cols := make(map[string]bool)
	for _, c := range s.Columns {
		if cols[c.Key] {
			return fmt.Errorf("%w: %s: duplicate column %q", ErrInvalidSchema, s.Name, c.Key)
		}
		cols[c.Key] = true
	}
	return nil
}
