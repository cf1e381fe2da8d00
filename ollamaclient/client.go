// Package ollamaclient implements the resilient HTTP client for the Ollama
// daemon. Every operation converts transport failures, unexpected statuses,
// and malformed payloads into the typed failures of the olerrors package;
// no daemon misbehavior propagates as an unhandled fault.
package ollamaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/ollama-mcp/config"
	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/effective-security/xlog"
	"golang.org/x/sync/singleflight"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/ollama-mcp", "ollamaclient")

// Per-operation deadlines. Each call owns its own budget regardless of the
// caller's context.
const (
	healthCheckTimeout = 5 * time.Second
	listTimeout        = 10 * time.Second
	chatTimeout        = 120 * time.Second
	deleteTimeout      = 30 * time.Second
	showTimeout        = 30 * time.Second

	keepAliveExpiry = 30 * time.Second
)

// AllowPolicy restricts which model names may be used for chat and pull
// operations. config.Settings satisfies it.
type AllowPolicy interface {
	IsModelAllowed(name string) bool
}

// allowAll is the policy applied when none is configured.
type allowAll struct{}

func (allowAll) IsModelAllowed(string) bool { return true }

// Client is a pooled HTTP client for the Ollama daemon. The pool is created
// lazily on first use and may be released with Close and re-acquired later.
// Construction never fails, even when the daemon is unreachable.
type Client struct {
	baseURL         string
	timeout         time.Duration
	downloadTimeout time.Duration
	maxConns        int
	policy          AllowPolicy

	mu         sync.Mutex
	httpClient *http.Client
	group      singleflight.Group
}

// Option overrides a Client default.
type Option func(*Client)

// WithPolicy sets the model allow/deny policy.
func WithPolicy(p AllowPolicy) Option {
	return func(c *Client) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithTimeout sets the base request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the given daemon base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		timeout:         config.DefaultTimeout,
		downloadTimeout: config.DefaultDownloadTimeout,
		maxConns:        config.DefaultPoolSize,
		policy:          allowAll{},
	}
	for _, opt := range opts {
		opt(c)
	}
	logger.KV(xlog.DEBUG, "host", c.baseURL, "timeout", c.timeout, "pool", c.maxConns)
	return c
}

// NewFromConfig returns a client configured from settings. It never fails.
func NewFromConfig(cfg *config.Settings) *Client {
	return &Client{
		baseURL:         cfg.URL(),
		timeout:         cfg.Timeout,
		downloadTimeout: cfg.DownloadTimeout,
		maxConns:        cfg.ConnectionPoolSize,
		policy:          cfg,
	}
}

// Host returns the configured daemon base URL.
func (c *Client) Host() string {
	return c.baseURL
}

// ensureClient returns the pooled HTTP client, creating it on first use.
// Concurrent callers during initialization share one in-flight construction
// instead of racing to create duplicate pools.
func (c *Client) ensureClient() *http.Client {
	c.mu.Lock()
	hc := c.httpClient
	c.mu.Unlock()
	if hc != nil {
		return hc
	}

	v, _, _ := c.group.Do("init", func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.httpClient == nil {
			c.httpClient = &http.Client{
				Transport: &http.Transport{
					MaxIdleConns:        c.maxConns,
					MaxIdleConnsPerHost: c.maxConns,
					MaxConnsPerHost:     c.maxConns,
					IdleConnTimeout:     keepAliveExpiry,
				},
			}
			logger.KV(xlog.DEBUG, "status", "pool_created", "max_conns", c.maxConns)
		}
		return c.httpClient, nil
	})
	return v.(*http.Client)
}

// Close releases the connection pool. The client remains usable; the next
// call re-initializes the pool.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
		logger.KV(xlog.DEBUG, "status", "pool_closed", "host", c.baseURL)
	}
}

// do issues one JSON request within the given budget. A nil body sends no
// payload. The caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, body any) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	// The caller closes the response body; tie the context to it so the
	// deadline covers the full read.
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.ensureClient().Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelReadCloser) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

// HealthCheck probes the daemon's listing endpoint and measures the round
// trip. It never returns an error; every failure mode becomes an unhealthy
// status with a populated reason.
func (c *Client) HealthCheck(ctx context.Context) *ollamamodel.HealthStatus {
	started := time.Now()

	resp, err := c.do(ctx, http.MethodGet, "/api/tags", healthCheckTimeout, nil)
	if err != nil {
		status := &ollamamodel.HealthStatus{
			Healthy:     false,
			Host:        c.baseURL,
			Error:       describeTransportError(err, healthCheckTimeout),
			LastChecked: time.Now(),
		}
		logger.ContextKV(ctx, xlog.WARNING, "op", "health_check", "err", status.Error)
		return status
	}
	defer resp.Body.Close()

	rtt := float64(time.Since(started)) / float64(time.Millisecond)
	status := &ollamamodel.HealthStatus{
		Host:           c.baseURL,
		ResponseTimeMS: &rtt,
		LastChecked:    time.Now(),
	}

	if resp.StatusCode != http.StatusOK {
		status.Error = fmt.Sprintf("server returned status %d", resp.StatusCode)
		return status
	}

	var listing tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "op", "health_check", "reason", "invalid_json", "err", err.Error())
		status.Error = "invalid JSON response from server"
		return status
	}

	status.Healthy = true
	status.ModelsCount = len(listing.Models)
	return status
}

// ListModels returns the daemon's installed models. Entries that fail to
// normalize are logged and skipped; the whole call fails only on transport
// errors, unexpected statuses, or an unparseable body.
func (c *Client) ListModels(ctx context.Context) ([]ollamamodel.ModelInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", listTimeout, nil)
	if err != nil {
		return nil, olerrors.WrapConnection(err, "failed to list models")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, olerrors.Connection("failed to list models: HTTP %d", resp.StatusCode)
	}

	var listing struct {
		Models []json.RawMessage `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, olerrors.WrapValidation(err, "invalid JSON response")
	}

	models := make([]ollamamodel.ModelInfo, 0, len(listing.Models))
	for _, raw := range listing.Models {
		model, err := normalizeModel(raw)
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING, "op", "list_models", "reason", "skipping_invalid_entry", "err", err.Error())
			continue
		}
		models = append(models, *model)
	}

	logger.ContextKV(ctx, xlog.DEBUG, "op", "list_models", "count", len(models))
	return models, nil
}

// GetModelInfo returns the named model from the daemon's listing, or nil
// when the model is not installed.
func (c *Client) GetModelInfo(ctx context.Context, name string) (*ollamamodel.ModelInfo, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].Name == name {
			return &models[i], nil
		}
	}
	return nil, nil
}

// describeTransportError renders a network-level failure for diagnostics.
func describeTransportError(err error, budget time.Duration) string {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Request timeout after %s", budget)
	default:
		return "Connection failed: " + err.Error()
	}
}

type tagsResponse struct {
	Models []json.RawMessage `json:"models"`
}
