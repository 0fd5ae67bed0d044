// Package validator provides struct and field validation with custom validators.
package validator

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// RequiredMessage is the helper text shown under an empty required field.
const RequiredMessage = "This field is required."

// ScanIntervals are the accepted scheduler intervals.
var ScanIntervals = []string{"15_minutes", "30_minutes", "1_hour", "12_hours", "1_day"}

// Severities are the accepted discovery severities.
var Severities = []string{"low", "medium", "high", "critical"}

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// ByField indexes the errors by field name. The first error per field wins.
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// New creates a new Validator with custom validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("repo_url", validateRepoURL)
	_ = v.RegisterValidation("website", validateWebsite)
	_ = v.RegisterValidation("scan_interval", validateScanInterval)
	_ = v.RegisterValidation("severity", validateSeverity)

	return &Validator{validate: v}
}

// Validate validates a struct and returns ValidationErrors if validation fails.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return convert(err, "")
}

// Var validates a single value against a tag list such as "required,email".
// Errors are reported under the given field name.
func (v *Validator) Var(field string, value any, tag string) error {
	if tag == "" {
		return nil
	}
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	return convert(err, field)
}

func convert(err error, field string) error {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := field
		if name == "" {
			name = toSnakeCase(e.Field())
		}
		result = append(result, ValidationError{
			Field:   name,
			Message: formatErrorMessage(e),
		})
	}
	return result
}

// validateRepoURL accepts anything git can clone from: http(s), ssh, git and
// scp-like "git@host:org/repo" endpoints with a host and a path.
func validateRepoURL(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true // Let 'required' handle empty values
	}
	ep, err := transport.NewEndpoint(value)
	if err != nil {
		return false
	}
	switch ep.Protocol {
	case "http", "https", "ssh", "git":
	default:
		return false
	}
	return ep.Host != "" && strings.Trim(ep.Path, "/") != ""
}

// validateWebsite accepts a bare host or an http(s) URL whose host is a
// registrable domain. Internationalized names are checked in punycode.
func validateWebsite(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true // Let 'required' handle empty values
	}
	if !strings.Contains(value, "://") {
		value = "https://" + value
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host, err := idna.Lookup.ToASCII(u.Hostname())
	if err != nil || !strings.Contains(host, ".") {
		return false
	}
	_, err = publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil
}

func validateScanInterval(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), ScanIntervals)
}

func validateSeverity(fl validator.FieldLevel) bool {
	return oneOf(strings.ToLower(fl.Field().String()), Severities)
}

func oneOf(value string, allowed []string) bool {
	if value == "" {
		return true // Let 'required' handle empty values
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// formatErrorMessage converts validation errors to human-readable messages.
func formatErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return RequiredMessage
	case "min", "gte":
		if isNumericKind(e) {
			return fmt.Sprintf("Must be at least %s.", e.Param())
		}
		return fmt.Sprintf("Must be at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", e.Param())
	case "email":
		return "Must be a valid email address."
	case "url", "http_url":
		return "Must be a valid URL."
	case "repo_url":
		return "Must be a git repository URL (https, ssh or git@host:path)."
	case "website":
		return "Must be a valid website address."
	case "scan_interval":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(ScanIntervals, ", "))
	case "severity":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(Severities, ", "))
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(e.Param(), " ", ", "))
	case "numeric", "number":
		return "Must be a number."
	case "ip":
		return "Must be a valid IP address."
	default:
		return fmt.Sprintf("Failed on '%s' validation.", e.Tag())
	}
}

func isNumericKind(e validator.FieldError) bool {
	switch e.Kind().String() {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64":
		return true
	}
	return false
}

// toSnakeCase converts PascalCase/camelCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
