// Package tools provides the native research tools GAIA agents call:
// Wikipedia, the Wayback Machine, GitHub, YouTube, and current time. Every
// tool is exposed as a function-backed operator with a JSON schema.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jd-opensource/oxygent-go/types"
)

const defaultUserAgent = "oxygent-go/1.0"

// Client is a rate-limited HTTP client shared by the research tools.
// Public APIs throttle aggressively, so every request passes a limiter.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRateLimit sets the request rate cap.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a shared tool HTTP client. Defaults: 5 req/s with a
// burst of 5, 30s timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "tools"))
	return c
}

// GetJSON performs a rate-limited GET and decodes the JSON response body
// into out. headers may be nil.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return types.NewError(types.ErrUpstreamError, "tool request failed").
			WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("tool request",
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		e := types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body))).
			WithHTTPStatus(resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			e = e.WithRetryable(true)
		}
		return e
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// buildURL joins a base URL, path segments, and query parameters.
func buildURL(base string, segments []string, query url.Values) string {
	u := base
	for _, s := range segments {
		u += "/" + url.PathEscape(s)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
