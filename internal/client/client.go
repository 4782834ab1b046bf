// ABOUTME: HTTP client for the Companion chat API
// ABOUTME: Attaches the bearer credential and maps transport/status failures to typed errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request id for correlating client and server logs
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the current credential. An empty string means unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource
type TokenFunc func() string

// Token implements TokenSource
func (f TokenFunc) Token() string { return f() }

// Client is the API client for the Companion backend
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the default request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a new API client with the given base URL.
// tokens may be nil, in which case every request is sent unauthenticated.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NetworkError is returned when the request never produced an HTTP response
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is returned for any non-2xx response
type HTTPError struct {
	Status int
	Body   []byte
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Unauthorized reports whether the backend rejected the credential
func (e *HTTPError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is an HTTPError carrying a 401
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Unauthorized()
}

// errorResponse covers both FastAPI ({"detail": ...}) and plain ({"error": ...}) bodies
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// Do sends a request to path relative to the base URL.
// body is JSON-encoded when non-nil; a 2xx response is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, c.baseURL+path, path, body, out)
}

func (c *Client) do(ctx context.Context, method, target, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	slog.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Message: "failed to read response from backend", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &NetworkError{Message: "request canceled", Err: err}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &NetworkError{Message: "request timed out", Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &NetworkError{Message: "request timed out", Err: err}
	}
	return &NetworkError{Message: fmt.Sprintf("cannot connect to backend at %s", c.baseURL), Err: err}
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	httpErr := &HTTPError{Status: resp.StatusCode, Body: data}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil {
		httpErr.Detail = errResp.Error
		if len(errResp.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(errResp.Detail, &detail); err == nil {
				httpErr.Detail = detail
			} else {
				// FastAPI validation errors carry a list of objects
				httpErr.Detail = string(errResp.Detail)
			}
		}
	}
	return httpErr
}
