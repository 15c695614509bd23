package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// StatusError is returned when the server keeps answering with a 5xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

type Options struct {
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a network error or a
	// 5xx. Zero means exactly one attempt.
	MaxRetries  int
	MaxFailures int
	OpenTimeout time.Duration
	Transport   http.RoundTripper
}

type Client struct {
	client     *http.Client
	cb         *CircuitBreaker
	maxRetries int
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		cb:         NewCircuitBreaker(opts.MaxFailures, opts.OpenTimeout),
		maxRetries: opts.MaxRetries,
	}
}

func (c *Client) Get(ctx context.Context, baseURL string, queryParams map[string]string, headers map[string]string) (*http.Response, error) {
	return c.attemptRequestWithRetry(ctx, func() (*http.Request, error) {
		u, err := withQuery(baseURL, queryParams)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

// Post sends body as JSON. Headers are applied after the default
// Content-Type, so callers can override it.
func (c *Client) Post(ctx context.Context, baseURL string, queryParams map[string]string, body any, headers map[string]string) (*http.Response, error) {
	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding body: %w", err)
		}
	}

	return c.attemptRequestWithRetry(ctx, func() (*http.Request, error) {
		u, err := withQuery(baseURL, queryParams)
		if err != nil {
			return nil, err
		}

		var bodyReader io.Reader
		if jsonData != nil {
			bodyReader = bytes.NewReader(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bodyReader)
		if err != nil {
			return nil, err
		}

		if jsonData != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

func withQuery(baseURL string, queryParams map[string]string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if len(queryParams) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, v := range queryParams {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) attemptRequestWithRetry(ctx context.Context, reqFactory func() (*http.Request, error)) (*http.Response, error) {
	if err := c.cb.CheckBeforeRequest(); err != nil {
		logger.Warn("Request blocked by circuit breaker", zap.Error(err))
		return nil, err
	}

	const baseDelay = 100 * time.Millisecond
	const maxJitterMs = 100

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		req, err := reqFactory()
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}

		response, err := c.client.Do(req)
		if err == nil && response.StatusCode < 500 {
			c.cb.OnSuccess()
			return response, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = &StatusError{StatusCode: response.StatusCode, Status: response.Status}
			response.Body.Close()
		}

		if i == c.maxRetries || errors.Is(err, context.Canceled) {
			break
		}

		backoff := baseDelay * time.Duration(math.Pow(2, float64(i)))
		jitter := time.Duration(r.Intn(maxJitterMs)) * time.Millisecond
		sleepDuration := backoff + jitter

		logger.Warn("Request failed, retrying",
			zap.Int("attempt", i+1),
			zap.Duration("sleep_duration", sleepDuration),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepDuration):
		}
	}

	c.cb.OnFailure()
	return nil, lastErr
}
