// Package apiclient talks to the external scanning REST API.
//
// Every collection follows the same contract: GET api/<collection> answers
// {"data":[...]}, POST and PATCH answer {"message":...} on success, DELETE
// answers any 2xx. Failures of any kind are reported as one of three wrapped
// sentinels so callers can treat them as a single "operation failed" outcome.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

const tracerName = "github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"

// maxBodySize caps how much of a backend response is read.
const maxBodySize = 32 << 20

var (
	// ErrRequest is returned when the request could not be sent or read.
	ErrRequest = errors.New("backend request failed")
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("backend returned an error status")
	// ErrMalformedResponse is returned when the body is not the expected envelope.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrInvalidCredentials is returned by Login for rejected credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Config configures the client.
type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds each call. Zero means no timeout.
	Timeout time.Duration
}

// StatusError carries the status and any message from a non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes errors.Is(err, ErrStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// WriteResult is the decoded response of a create or update.
type WriteResult struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Succeeded reports whether the backend acknowledged the write.
func (r *WriteResult) Succeeded() bool {
	return r != nil && r.Message != ""
}

// User is the identity returned by the login endpoint.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UnmarshalJSON accepts the id as a JSON string or number.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)

	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}

// Client is the scanning API HTTP client.
type Client struct {
	base       *url.URL
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTracerProvider sets the tracer provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithLogger sets the logger used for debug request logging.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", cfg.BaseURL)
	}

	c := &Client{
		base:       base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer(tracerName),
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CollectionURL returns the absolute URL of a collection, or of one item when id is set.
func (c *Client) CollectionURL(collection, id string) string {
	elems := []string{"api", collection}
	if id != "" {
		elems = append(elems, url.PathEscape(id))
	}
	return c.base.JoinPath(elems...).String()
}

// Ping reports whether the API answers at all. Any response below 500
// counts, since the root path may well be a 404 or require a token.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrRequest, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrRequest, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// List fetches a collection and returns the records of its data array.
func (c *Client) List(ctx context.Context, collection string) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, collection, c.CollectionURL(collection, ""), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data *[]map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, collection, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data array", ErrMalformedResponse, collection)
	}

	rows := *envelope.Data
	metrics.CollectionRows.WithLabelValues(collection).Set(float64(len(rows)))
	return rows, nil
}

// Create POSTs payload to the collection.
func (c *Client) Create(ctx context.Context, collection string, payload map[string]any) (*WriteResult, error) {
	return c.write(ctx, http.MethodPost, collection, c.CollectionURL(collection, ""), payload)
}

// Update PATCHes payload onto one item.
func (c *Client) Update(ctx context.Context, collection, id string, payload map[string]any) (*WriteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: update %s: empty id", ErrRequest, collection)
	}
	return c.write(ctx, http.MethodPatch, collection, c.CollectionURL(collection, id), payload)
}

// Delete removes one item.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return fmt.Errorf("%w: delete %s: empty id", ErrRequest, collection)
	}
	_, err := c.do(ctx, http.MethodDelete, collection, c.CollectionURL(collection, id), nil)
	return err
}

// Login checks credentials against the backend login endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body, err := c.do(ctx, http.MethodPost, "login", c.base.JoinPath("login").String(),
		map[string]string{"email": email, "password": password})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}

	// The user may come back bare or wrapped in "user" or "data".
	var wrapped struct {
		User *User `json:"user"`
		Data *User `json:"data"`
	}
	var bare User
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: decode login: %v", ErrMalformedResponse, err)
	}
	user := wrapped.User
	if user == nil {
		user = wrapped.Data
	}
	if user == nil {
		if err := json.Unmarshal(body, &bare); err != nil {
			return nil, fmt.Errorf("%w: decode login: %v", ErrMalformedResponse, err)
		}
		user = &bare
	}
	if user.Email == "" {
		user.Email = email
	}
	return user, nil
}

func (c *Client) write(ctx context.Context, method, collection, target string, payload map[string]any) (*WriteResult, error) {
	body, err := c.do(ctx, method, collection, target, payload)
	if err != nil {
		return nil, err
	}

	var res WriteResult
	if len(bytes.TrimSpace(body)) == 0 {
		return &res, nil
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: decode %s %s: %v", ErrMalformedResponse, method, collection, err)
	}
	return &res, nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, collection, target string, payload any) (_ []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+collection,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("console.collection", collection),
		))
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(collection, method).Observe(time.Since(start).Seconds())
		metrics.BackendRequestsTotal.WithLabelValues(collection, method, metrics.Outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reqBody io.Reader
	if payload != nil {
		data, mErr := json.Marshal(payload)
		if mErr != nil {
			return nil, fmt.Errorf("%w: marshal request: %v", ErrRequest, mErr)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRequest, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "*/*")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("backend request", "method", method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, collection, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseStatusError(resp.StatusCode, body)
	}
	return body, nil
}

func parseStatusError(statusCode int, body []byte) error {
	se := &StatusError{StatusCode: statusCode}

	var parsed struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			se.Message = parsed.Message
		case parsed.Error != nil:
			if s, ok := parsed.Error.(string); ok {
				se.Message = s
			}
		}
	}
	if se.Message == "" {
		se.Message = strings.TrimSpace(http.StatusText(statusCode))
	}
	return se
}
