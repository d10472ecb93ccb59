// Package practicum implements the Practicum homework-statuses API client.
// The client performs one request per call: no retries, no backoff, no
// rate limiting. Failures are reported as typed homework errors so the poller
// can classify them.
package practicum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alem-hub/homework-bot/internal/domain/homework"
	"github.com/alem-hub/homework-bot/internal/infrastructure/metrics"
)

// DefaultEndpoint is the production homework-statuses endpoint.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Practicum API client.
type ClientConfig struct {
	// Endpoint is the full homework-statuses URL
	Endpoint string

	// Token is the OAuth token sent in the Authorization header
	Token string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Logger for structured logging
	Logger *slog.Logger

	// Metrics receives request latency; may be nil
	Metrics *metrics.Metrics

	// HTTPClient overrides the default client (tests)
	HTTPClient *http.Client
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Endpoint: DefaultEndpoint,
		Token:    token,
		Timeout:  30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the Practicum API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new Practicum API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger,
		metrics:    config.Metrics,
	}
}

// FetchSubmissions requests submissions updated since the given Unix
// timestamp and returns the decoded JSON body without validating it.
func (c *Client) FetchSubmissions(ctx context.Context, since int64) (any, error) {
	start := time.Now()
	payload, err := c.fetch(ctx, since)
	c.metrics.ObserveAPIRequest(time.Since(start), err)
	return payload, err
}

func (c *Client) fetch(ctx context.Context, since int64) (any, error) {
	fullURL, err := c.requestURL(since)
	if err != nil {
		return nil, &homework.TransportError{Endpoint: c.config.Endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &homework.TransportError{Endpoint: c.config.Endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "OAuth "+c.config.Token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("practicum api request", "endpoint", c.config.Endpoint, "from_date", since)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &homework.TransportError{Endpoint: c.config.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &homework.TransportError{Endpoint: c.config.Endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &homework.HTTPStatusError{Endpoint: c.config.Endpoint, StatusCode: resp.StatusCode}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &homework.SchemaError{Op: "decode response", Reason: "body is not valid JSON", Err: err}
	}

	c.logger.Info("practicum api response received", "status", resp.StatusCode, "bytes", len(body))
	return payload, nil
}

func (c *Client) requestURL(since int64) (string, error) {
	u, err := url.Parse(c.config.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	params := u.Query()
	params.Set("from_date", strconv.FormatInt(since, 10))
	u.RawQuery = params.Encode()
	return u.String(), nil
}
