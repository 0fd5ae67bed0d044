// Package apierror is the JSON error body the console sends when a request
// cannot be answered with a page: health checks, CSRF and rate-limit
// rejections, timeouts and malformed forms.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable, machine-readable part of an error.
type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeRequestTooLarge    Code = "REQUEST_TOO_LARGE"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout            Code = "TIMEOUT"
)

// statusOf maps each code to the HTTP status it is sent with.
var statusOf = map[Code]int{
	CodeBadRequest:         http.StatusBadRequest,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	CodeRateLimitExceeded:  http.StatusTooManyRequests,
	CodeInternalError:      http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeTimeout:            http.StatusGatewayTimeout,
}

// Error is an error that knows how to render itself.
type Error struct {
	Status  int
	Code    Code
	Message string

	// Err is the cause. It is logged, never sent.
	Err error
}

// Response is the body written for an Error.
type Response struct {
	Error     string `json:"error"`
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WriteJSON sends e without a request id.
func (e *Error) WriteJSON(w http.ResponseWriter) {
	e.WriteJSONWithRequestID(w, "")
}

// WriteJSONWithRequestID sends e and echoes requestID in the header and body.
func (e *Error) WriteJSONWithRequestID(w http.ResponseWriter, requestID string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if requestID != "" {
		h.Set("X-Request-ID", requestID)
	}
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(Response{
		Error:     string(e.Code),
		Code:      e.Code,
		Message:   e.Message,
		RequestID: requestID,
	})
}

func newError(code Code, message string) *Error {
	return &Error{Status: statusOf[code], Code: code, Message: message}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func BadRequest(message string) *Error {
	return newError(CodeBadRequest, orDefault(message, "Bad request"))
}

func Forbidden(message string) *Error {
	return newError(CodeForbidden, orDefault(message, "Access denied"))
}

// NotFound names what was missing, e.g. NotFound("Page").
func NotFound(what string) *Error {
	return newError(CodeNotFound, orDefault(what, "Resource")+" not found")
}

func RequestTooLarge() *Error {
	return newError(CodeRequestTooLarge, "Request body too large")
}

func RateLimitExceeded() *Error {
	return newError(CodeRateLimitExceeded, "Rate limit exceeded")
}

// InternalError hides err from the client behind a generic message.
func InternalError(err error) *Error {
	e := newError(CodeInternalError, "An internal error occurred")
	e.Err = err
	return e
}

func ServiceUnavailable(message string) *Error {
	return newError(CodeServiceUnavailable, orDefault(message, "Service temporarily unavailable"))
}

func Timeout() *Error {
	return newError(CodeTimeout, "Request timeout")
}

// InvalidForm classifies a form parsing failure. Bodies cut off by the size
// limit become a 413, anything else a 400.
func InvalidForm(err error) *Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		e := RequestTooLarge()
		e.Err = err
		return e
	}
	e := BadRequest("Invalid form")
	e.Err = err
	return e
}

// FromError returns the *Error inside err, or an internal error wrapping it.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return InternalError(err)
}
