package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/shared"
	"golang.org/x/time/rate"
)

// APIError is a non-2xx response. Message comes from the body's "error" field when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps 404 to [shared.ErrNotFound] and every other status to [shared.ErrApplication].
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	return shared.ErrApplication
}

// Client performs JSON requests against one base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a client. A nil httpClient uses [http.DefaultClient]; a nil logger discards.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// send issues the request and returns the status and the full body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.exchange(ctx, method, path, contentType, reader)
}

// exchange performs one round trip with an already encoded body.
func (c *Client) exchange(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: request failed: %w", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrTransport, err)
	}
	return resp, data, nil
}

// do sends a JSON request and decodes a 2xx body into result (ignored when nil).
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	resp, data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.decode(method, path, resp, data, result)
}

// doForm sends a multipart/form-data body filled in by write and handles the
// response like [Client.do].
func (c *Client) doForm(ctx context.Context, method, path string, write func(*multipart.Writer) error, result any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := write(form); err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	resp, data, err := c.exchange(ctx, method, path, form.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	return c.decode(method, path, resp, data, result)
}

// decode turns a non-2xx status into an [APIError] and otherwise unmarshals into result (ignored when nil).
func (c *Client) decode(method, path string, resp *http.Response, data []byte, result any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Debug("response error", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrDecode, err)
		}
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failure body.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// IsNotFound reports whether err came from a 404 or a not_found task.
func IsNotFound(err error) bool { return errors.Is(err, shared.ErrNotFound) }

// rateLimitedTransport waits on a token bucket and stamps each request with an X-Request-ID.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req = req.Clone(req.Context())
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", shared.GenerateID())
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the http.Client shared by all services. A zero rate disables limiting.
func NewHTTPClient(cfg shared.HTTPConfig, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &http.Client{
		Timeout:   cfg.Timeout(),
		Transport: &rateLimitedTransport{base: base, limiter: rate.NewLimiter(limit, burst)},
	}
}
