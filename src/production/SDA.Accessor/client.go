// Package accessor issues JSON requests against a fixed base address and classifies
// every outcome as success, transport error or application error.
package accessor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
)

// Client handles communication with one HTTP backend
type Client struct {
	baseURL       string
	httpClient    *http.Client
	discriminator Discriminator
	userAgent     string
	timeout       time.Duration
	logger        *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It applies after every other option and never
// changes a client passed to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDiscriminator sets how a well-formed response is judged
func WithDiscriminator(d Discriminator) Option {
	return func(c *Client) { c.discriminator = d }
}

// WithLogger sets the logger used for per-call debug lines
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for baseURL. Without options every 2xx JSON response is a success.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		discriminator: StatusDiscriminator,
		userAgent:     "sda-web-console",
		logger:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the address every path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a successful call's outcome
type Response struct {
	Status  int
	Payload json.RawMessage
}

// Call sends one request and classifies the outcome. It never retries.
// The returned error is a *TransportError or an *ApplicationError.
func (c *Client) Call(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	start := time.Now()

	resp, err := c.makeRequest(ctx, method, path, body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Logger.Debug().
		Str("method", method).
		Str("url", c.baseURL+path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("backend returned status %d: %s", resp.StatusCode, snippet(raw))}
	}

	if len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
		return nil, &TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("malformed JSON response: %s", snippet(raw))}
	}

	payload, err := c.discriminator(resp.StatusCode, raw)
	if err != nil {
		if appErr, ok := AsApplication(err); ok {
			appErr.Method, appErr.Path, appErr.Status = method, path, resp.StatusCode
			return nil, appErr
		}
		return nil, &TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	return &Response{Status: resp.StatusCode, Payload: payload}, nil
}

// Decode calls and unmarshals the payload into out. An empty payload leaves out untouched.
func (c *Client) Decode(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.Call(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Payload, out); err != nil {
		return &TransportError{Method: method, Path: path, Status: resp.Status, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// makeRequest makes an HTTP request against the base address.
// String and byte bodies are sent verbatim; anything else is JSON-encoded.
func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
	case []byte:
		reqBody = bytes.NewReader(b)
	case json.RawMessage:
		reqBody = bytes.NewReader(b)
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.httpClient.Do(req)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
