// Package blogapi is the HTTP client for the Welog REST API.
// It attaches the caller's bearer token, decodes JSON bodies and maps failed
// responses to typed errors. A 401 on anything but signin/signup runs the
// OnUnauthorized hook so the caller can tear the session down.
package blogapi

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
)

// maxErrorBody caps how much of a failed response body is read for the message.
const maxErrorBody = 64 * 1024

// Config configures a Client.
type Config struct {
	// HTTPClient defaults to a plain http.Client (transport defaults, no timeout).
	HTTPClient *http.Client
	// Token returns the bearer token for the request context, "" when anonymous.
	Token func(ctx context.Context) string
	// OnUnauthorized runs when a non-auth request is answered with 401.
	OnUnauthorized func(ctx context.Context)
	Logger         *slog.Logger
	Metrics        *Metrics
	// BaseURL is the API origin including the version prefix, e.g. http://localhost:8080/api/v1
	BaseURL string
}

// Client talks to the Welog REST API.
type Client struct {
	httpClient     *http.Client
	token          func(ctx context.Context) string
	onUnauthorized func(ctx context.Context)
	logger         *slog.Logger
	metrics        *Metrics
	baseURL        string
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:     httpClient,
		token:          cfg.Token,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         logger,
		metrics:        cfg.Metrics,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type tokenKey struct{}

// WithToken returns a context whose requests use token instead of the configured Token func.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Get issues a GET and decodes the JSON response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, query, in, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, in, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, query, nil, out)
}

// Multipart sends form as multipart/form-data with the given method.
func (c *Client) Multipart(ctx context.Context, method, path string, form *Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("%s %s: encoding form: %w", method, path, err)
	}
	return c.do(ctx, method, path, nil, body, contentType, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encoding body: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s %s: creating request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, path, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.observe(method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return c.handleFailure(ctx, method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty 200/201 bodies are legal for several mutations.
			return nil
		}
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	if c.token == nil {
		return ""
	}
	return c.token(ctx)
}

// handleFailure builds the APIError and runs the 401 teardown hook.
func (c *Client) handleFailure(ctx context.Context, method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message, fields := errorBody(raw)
	apiErr := &APIError{
		Operation:  method + " " + path,
		StatusCode: resp.StatusCode,
		Message:    message,
		Fields:     fields,
		kind:       statusError(resp.StatusCode),
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(path) {
		return apiErr
	}

	c.logger.Warn("upstream rejected credentials, tearing session down",
		"method", method, "path", path)
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
}

// isAuthPath reports whether a 401 on path is a credentials error rather than
// an expired session.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/signin") || strings.HasPrefix(path, "/auth/signup")
}

// errorBody extracts the human readable message and field errors from a
// Spring-style error body.
func errorBody(raw []byte) (string, map[string]string) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}
	var body struct {
		ValidationErrors map[string]string `json:"validationErrors"`
		Message          string            `json:"message"`
		Error            string            `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw)), nil
	}
	if body.Message != "" {
		return body.Message, body.ValidationErrors
	}
	return body.Error, body.ValidationErrors
}
