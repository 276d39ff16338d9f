package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/wagiedev/uci-service-go/internal/api"
	"github.com/wagiedev/uci-service-go/internal/errors"
)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second

	// maxErrorBody bounds how much of an undecodable body is quoted in errors.
	maxErrorBody = 512
)

// Client talks to a running analysis service.
type Client struct {
	log     *slog.Logger
	baseURL string

	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	httpClient   *http.Client

	doer *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for requests and retries.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithRetry sets the retry count and the backoff bounds.
// Zero bounds keep the defaults.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax

		if waitMin > 0 {
			c.retryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.retryWaitMax = waitMax
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the service at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		log:          slog.New(slog.DiscardHandler),
		baseURL:      strings.TrimRight(baseURL, "/"),
		retryMax:     defaultRetryMax,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.With("component", "client")

	retryClient := retryablehttp.NewClient()
	if c.httpClient != nil {
		retryClient.HTTPClient = c.httpClient
	}

	retryClient.RetryMax = c.retryMax
	retryClient.RetryWaitMin = c.retryWaitMin
	retryClient.RetryWaitMax = c.retryWaitMax
	retryClient.Logger = c.log
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c.doer = retryClient.StandardClient()

	return c, nil
}

// BestMove asks the service for the best move of req.FEN.
//
// A well-formed reply is returned even when the analysis failed; check
// Success and Failure. An error means the request itself was rejected or the
// service could not be reached.
func (c *Client) BestMove(ctx context.Context, req api.AnalyzeRequest) (*api.BestMoveResponse, error) {
	query := url.Values{}
	query.Set("fen", req.FEN)

	if req.Depth > 0 {
		query.Set("depth", strconv.Itoa(req.Depth))
	}

	if req.TimeLimit > 0 {
		query.Set("time_limit", strconv.FormatFloat(req.TimeLimit, 'f', -1, 64))
	}

	var resp api.BestMoveResponse
	if err := c.do(ctx, http.MethodGet, "/get_best_move?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Health runs the service health probe.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Stats returns the supervisor counters as reported by the service.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	if err := c.do(ctx, http.MethodGet, "/stats", &stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// Restart asks the service to replace its engine process.
func (c *Client) Restart(ctx context.Context) error {
	var stats map[string]any

	return c.do(ctx, http.MethodPost, "/engine/restart", &stats)
}

// do sends one request and decodes the JSON body into v.
//
// 503 bodies of analysis and health calls carry a result and are decoded into
// v. Any other non-2xx status becomes an APIError.
func (c *Client) do(ctx context.Context, method, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("Service responded", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	ok := resp.StatusCode < 300 ||
		(resp.StatusCode == http.StatusServiceUnavailable && method == http.MethodGet && path != "/stats")
	if !ok {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func apiError(status int, body []byte) error {
	var decoded api.ErrorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return &errors.APIError{StatusCode: status, Message: decoded.Error}
	}

	message := strings.TrimSpace(string(body))
	if len(message) > maxErrorBody {
		message = message[:maxErrorBody]
	}

	return &errors.APIError{StatusCode: status, Message: message}
}
