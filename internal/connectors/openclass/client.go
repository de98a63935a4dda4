package openclass

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
	"github.com/custodia-labs/cohort-tracker/internal/metrics"
)

// maxErrorBodySize bounds how much of a failed response is kept for errors.
const maxErrorBodySize = 64 * 1024

// Verify interface compliance.
var _ driven.LmsProvider = (*Client)(nil)

// Client talks to the OpenClass API.
type Client struct {
	cfg         Config
	http        *http.Client
	rateLimiter *RateLimiter

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient validates cfg and returns an unauthenticated client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(cfg.RequestInterval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "openclass"
}

func (c *Client) currentToken() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrAuth, domain.ErrNotAuthenticated)
	}
	return c.token, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", c.cfg.Origin)
	req.Header.Set("X-OpenClass-App-Id", c.cfg.AppID)
}

// get performs an authenticated GET and decodes the outer envelope.
func (c *Client) get(ctx context.Context, op, path string) (*envelope, error) {
	token, err := c.currentToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	c.setCommonHeaders(req)
	req.Header.Set("Content-Type", "application/json; charset=ISO-8859-1")
	req.Header.Set("bearer", token)

	env, err := c.do(req, op)
	if err != nil {
		if IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuth, err)
		}
		return nil, err
	}
	return env, nil
}

// do sends req through the rate limiter and decodes the envelope of a 2xx response.
func (c *Client) do(req *http.Request, op string) (*envelope, error) {
	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	logger.Debug("openclass: %s %s", req.Method, req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequests.WithLabelValues(op, statusClass(resp.StatusCode)).Inc()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(readBodyForError(resp.Body))),
			URL:        req.URL.String(),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	return &env, nil
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.APIBase, "/") + path
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
