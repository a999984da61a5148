// Package api implements the typed REST client for the dru backend.
//
// A single Client handles base-URL resolution, query and header filtering
// and bearer authentication; the resource groups (auth, budgets, habits)
// layer typed calls and normalization on top of it. Each call is one
// request-response exchange: no retries, no streaming, no cancellation
// beyond the caller's context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dru/internal/session"
)

const defaultTimeout = 30 * time.Second

type (
	// Params are query parameters for a request. Entries whose value is
	// nil or an empty string are dropped before the request is issued.
	Params map[string]any

	// Headers are extra request headers. Values are coerced to strings;
	// entries empty after trimming are dropped.
	Headers map[string]any
)

// Client issues requests against a configured base URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *session.Session
}

// NewClient creates a resource client. The session supplies the bearer
// token attached to outgoing requests once the user has logged in.
func NewClient(baseURL string, sess *session.Session) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		session:    sess,
	}
}

// ResolveURL turns a logical path into a fully qualified URL. Absolute
// http(s) URLs pass through unchanged; anything else is joined to the
// base URL with exactly one separating slash.
func (c *Client) ResolveURL(path string) string {
	if hasScheme(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func hasScheme(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Error is a non-2xx response surfaced to the caller.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is a 401 response.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Get issues a GET request and decodes the JSON response into out.
// Headers are filtered like params: entries empty after trimming are
// dropped before the request is issued.
func (c *Client) Get(ctx context.Context, path string, params Params, headers Headers, out any) error {
	return c.do(ctx, http.MethodGet, path, params, headers, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params Params, headers Headers, body, out any) error {
	target := c.ResolveURL(path)
	if query := encodeParams(params); query != "" {
		target += "?" + query
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range filterHeaders(headers) {
		req.Header.Set(key, value)
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// encodeParams builds the query string, dropping entries with no usable
// value. An empty result means the query is omitted entirely.
func encodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for key, value := range params {
		s, ok := paramString(value)
		if !ok {
			continue
		}
		values.Set(key, s)
	}
	return values.Encode()
}

func paramString(v any) (string, bool) {
	switch value := v.(type) {
	case nil:
		return "", false
	case string:
		if value == "" {
			return "", false
		}
		return value, true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(value), true
	default:
		return fmt.Sprint(value), true
	}
}

// filterHeaders coerces header values to strings and drops entries that
// are empty after trimming.
func filterHeaders(headers Headers) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		s, ok := paramString(value)
		if !ok {
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out[key] = s
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// errorMessage extracts a human-readable message from an error response
// body, falling back to the HTTP status text.
func errorMessage(data []byte, status int) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(status)
}
