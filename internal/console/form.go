package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

// DatetimeLayout is the format of datetime form values.
const DatetimeLayout = "2006-01-02T15:04"

// TimestampLayout is the format of submit-time stamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// BoolOptions are the choices of a bool field.
var BoolOptions = []Option{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}

// ErrValidation is returned when a form fails its field rules.
var ErrValidation = errors.New("validation failed")

// invalidOptionMessage is shown for a select value outside its options.
const invalidOptionMessage = "Select one of the listed options."

// Values holds form input as text, keyed by field.
type Values map[string]string

// Clone returns a copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// Defaults returns the reset values of a create form.
func Defaults(s *Schema, now time.Time) Values {
	values := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		values[f.Key] = fieldDefault(f, now, values)
	}
	return values
}

func fieldDefault(f Field, now time.Time, values Values) string {
	if f.DefaultFunc != nil {
		return f.DefaultFunc(now, values)
	}
	if f.Default != "" {
		return f.Default
	}
	switch f.Kind {
	case KindNumber:
		return "0"
	case KindBool:
		return "false"
	}
	return ""
}

// Prefill returns edit form values taken from item, falling back to the
// field default where the item has no value.
func Prefill(s *Schema, item Record, now time.Time) Values {
	defaults := Defaults(s, now)
	values := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := item.Value(f.Key)
		if !ok {
			values[f.Key] = defaults[f.Key]
			continue
		}
		v := FormValue(f, raw)
		if v == "" {
			v = defaults[f.Key]
		}
		values[f.Key] = v
	}
	return values
}

// FormValue converts a record value into form text for field f.
func FormValue(f Field, raw any) string {
	s := formatScalar(raw)
	switch f.Kind {
	case KindDatetime:
		if len(s) > len(DatetimeLayout) {
			s = s[:len(DatetimeLayout)]
		}
	case KindPassword:
		return ""
	}
	return s
}

// FieldOptions returns the selectable options of f. Fetched holds side-fetched
// options keyed by field.
func FieldOptions(f Field, fetched map[string][]Option) []Option {
	switch {
	case f.OptionsFrom != nil:
		return fetched[f.Key]
	case f.Kind == KindBool:
		return BoolOptions
	default:
		return f.Options
	}
}

// ValidateValues checks every field visible in mode. It returns nil or a
// validator.ValidationErrors with one entry per failing field. No I/O happens.
func ValidateValues(v *validator.Validator, s *Schema, mode Mode, values Values, fetched map[string][]Option) error {
	var errs validator.ValidationErrors
	for _, f := range s.VisibleFields(mode) {
		if msg := validateField(v, f, values[f.Key], fetched); msg != "" {
			errs = append(errs, validator.ValidationError{Field: f.Key, Message: msg})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateField(v *validator.Validator, f Field, value string, fetched map[string][]Option) string {
	if f.Kind == KindBool {
		return ""
	}
	if f.Required {
		if msg := firstMessage(v.Var(f.Key, strings.TrimSpace(value), "required")); msg != "" {
			return msg
		}
	}
	if value == "" {
		return ""
	}

	if f.Kind == KindNumber {
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return "Must be a number."
		}
		return firstMessage(v.Var(f.Key, n, fmt.Sprintf("gte=%s", strconv.FormatFloat(f.Min, 'f', -1, 64))))
	}

	if f.IsSelect() {
		opts := FieldOptions(f, fetched)
		if len(opts) > 0 && !hasOption(opts, value) {
			return invalidOptionMessage
		}
	}

	if f.Kind == KindList && len(splitList(value)) == 0 && f.Required {
		return validator.RequiredMessage
	}

	if f.Rules != "" {
		return firstMessage(v.Var(f.Key, strings.TrimSpace(value), f.Rules))
	}
	return ""
}

func firstMessage(err error) string {
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Message
	}
	return err.Error()
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// BuildPayload encodes the visible fields of a form and applies stamps.
// Numbers are coerced (empty or invalid becomes 0), bools become JSON
// booleans and list fields become arrays of trimmed strings.
func BuildPayload(s *Schema, mode Mode, values Values, item Record, now time.Time) map[string]any {
	payload := make(map[string]any, len(s.Fields)+len(s.Stamps))
	for _, f := range s.VisibleFields(mode) {
		payload[f.Key] = encodeValue(f, values[f.Key])
	}

	ts := now.UTC().Format(TimestampLayout)
	for _, st := range s.Stamps {
		switch st.Kind {
		case StampNow:
			payload[st.Key] = ts
		case StampKeep:
			if v, ok := item.Value(st.Key); ok && mode == ModeEdit {
				payload[st.Key] = v
			} else {
				payload[st.Key] = ts
			}
		case StampValueOrNow:
			if v := values[st.Key]; v != "" {
				payload[st.Key] = v
			} else {
				payload[st.Key] = ts
			}
		}
	}
	return payload
}

func encodeValue(f Field, value string) any {
	switch f.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return float64(0)
		}
		return n
	case KindBool:
		b, _ := strconv.ParseBool(value)
		return b
	case KindList:
		return splitList(value)
	default:
		return value
	}
}

func splitList(value string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
