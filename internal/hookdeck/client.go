// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package hookdeck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	// DefaultBaseURL is the versioned Hookdeck API root
	DefaultBaseURL = "https://api.hookdeck.com/2024-09-01"
	// DefaultPublishURL is the Publish API endpoint
	DefaultPublishURL = "https://hkdk.events/v1/publish"
	// DefaultRequestsPerSecond is the default client-side request ceiling
	DefaultRequestsPerSecond = 1
	// DefaultMaxRetries is the default number of retries on HTTP 429
	DefaultMaxRetries = 5
	// MaxRetryDelay bounds a single wait between retries
	MaxRetryDelay = time.Hour
)

// 2^12 seconds already exceeds MaxRetryDelay
const maxBackoffExponent = 12

// Config defines how a Client reaches the API
type Config struct {
	APIKey            string
	BaseURL           string
	PublishURL        string
	RequestsPerSecond float64
	MaxRetries        int
	HTTPClient        *http.Client
}

// hookdeckClient implements the Client interface over net/http
type hookdeckClient struct {
	apiKey     string
	baseURL    string
	publishURL string
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter

	// sleep waits out a retry delay
	sleep func(ctx context.Context, d time.Duration) error
}

// call describes one outgoing request
type call struct {
	method string
	url    string
	body   []byte
	header http.Header
	noAuth bool
}

// NewClient creates a new Hookdeck client. It fails with ErrMissingAPIKey
// when cfg.APIKey is empty.
func NewClient(cfg Config) (Client, error) {
	return newClient(cfg)
}

func newClient(cfg Config) (*hookdeckClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PublishURL == "" {
		cfg.PublishURL = DefaultPublishURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", cfg.MaxRetries)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &hookdeckClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		publishURL: cfg.PublishURL,
		maxRetries: cfg.MaxRetries,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		sleep:      sleepContext,
	}, nil
}

// getJSON issues an authenticated GET and decodes the response into v
func (c *hookdeckClient) getJSON(ctx context.Context, url string, v any) error {
	payload, err := c.do(ctx, call{method: http.MethodGet, url: url})
	if err != nil {
		return err
	}
	return decode(payload, v)
}

// do sends a request, retrying on HTTP 429 until maxRetries retries are spent
func (c *hookdeckClient) do(ctx context.Context, req call) ([]byte, error) {
	logger := log.FromContext(ctx)

	for retryCount := 0; ; retryCount++ {
		if err := c.enforceRateLimit(ctx); err != nil {
			return nil, err
		}

		resp, err := c.send(ctx, req)
		if err != nil {
			return nil, &TransportError{Err: err}
		}

		payload, readErr := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck,gosec

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryCount >= c.maxRetries {
				return nil, &RateLimitExhaustedError{MaxRetries: c.maxRetries}
			}

			delay := retryDelay(resp.Header, retryCount)
			logger.Info("Rate limited (429), retrying",
				"delay", delay,
				"attempt", fmt.Sprintf("%d/%d", retryCount+1, c.maxRetries))

			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     http.StatusText(resp.StatusCode),
				Body:       payload,
			}
		}

		if readErr != nil {
			return nil, &TransportError{Err: readErr}
		}
		return payload, nil
	}
}

func (c *hookdeckClient) send(ctx context.Context, req call) (*http.Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if !req.noAuth {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(httpReq)
}

// enforceRateLimit blocks until the next request may depart
func (c *hookdeckClient) enforceRateLimit(ctx context.Context) error {
	reservation := c.limiter.Reserve()
	wait := reservation.Delay()
	if wait <= 0 {
		return nil
	}

	log.FromContext(ctx).Info("Rate limiting", "waitMs", wait.Milliseconds())

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelay prefers the server's Retry-After seconds and falls back to
// 2^retryCount seconds. Both are capped at MaxRetryDelay.
func retryDelay(header http.Header, retryCount int) time.Duration {
	if retryAfter := strings.TrimSpace(header.Get("Retry-After")); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			if seconds > int(MaxRetryDelay/time.Second) {
				return MaxRetryDelay
			}
			return time.Duration(seconds) * time.Second
		}
	}

	if retryCount >= maxBackoffExponent {
		return MaxRetryDelay
	}
	multiplier := 1 << uint(retryCount) // 2^retryCount
	return min(time.Duration(multiplier)*time.Second, MaxRetryDelay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
