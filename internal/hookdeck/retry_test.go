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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

type scriptedResponse struct {
	statusCode int
	retryAfter string
	body       string
}

// scriptedServer replies with responses in order and then with an empty page
func scriptedServer(t *testing.T, responses []scriptedResponse) (*httptest.Server, *int32) {
	t.Helper()

	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(atomic.AddInt32(&attempts, 1)) - 1
		if i >= len(responses) {
			w.Write([]byte(`{"models":[],"pagination":{},"count":0}`)) //nolint:errcheck,gosec
			return
		}

		resp := responses[i]
		if resp.retryAfter != "" {
			w.Header().Set("Retry-After", resp.retryAfter)
		}
		w.WriteHeader(resp.statusCode)
		w.Write([]byte(resp.body)) //nolint:errcheck,gosec
	}))
	t.Cleanup(server.Close)

	return server, &attempts
}

// TestRetryWithBackoff tests the 429 retry loop
func TestRetryWithBackoff(t *testing.T) {
	const okPage = `{"models":[{"id":"evt_1","status":"FAILED"}],"pagination":{},"count":1}`

	tests := []struct {
		name         string
		maxRetries   int
		responses    []scriptedResponse
		wantAttempts int32
		wantDelays   []time.Duration
		wantErr      error
	}{
		{
			name:         "Succeeds on first attempt",
			maxRetries:   3,
			responses:    []scriptedResponse{{statusCode: http.StatusOK, body: okPage}},
			wantAttempts: 1,
			wantDelays:   []time.Duration{},
		},
		{
			name:       "Honors Retry-After then backs off exponentially",
			maxRetries: 2,
			responses: []scriptedResponse{
				{statusCode: http.StatusTooManyRequests, retryAfter: "1"},
				{statusCode: http.StatusTooManyRequests},
				{statusCode: http.StatusOK, body: okPage},
			},
			wantAttempts: 3,
			wantDelays:   []time.Duration{1 * time.Second, 2 * time.Second},
		},
		{
			name:       "Exponential backoff without Retry-After",
			maxRetries: 5,
			responses: []scriptedResponse{
				{statusCode: http.StatusTooManyRequests},
				{statusCode: http.StatusTooManyRequests},
				{statusCode: http.StatusTooManyRequests},
				{statusCode: http.StatusOK, body: okPage},
			},
			wantAttempts: 4,
			wantDelays:   []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		},
		{
			name:       "Unparseable Retry-After falls back to backoff",
			maxRetries: 1,
			responses: []scriptedResponse{
				{statusCode: http.StatusTooManyRequests, retryAfter: "soon"},
				{statusCode: http.StatusOK, body: okPage},
			},
			wantAttempts: 2,
			wantDelays:   []time.Duration{1 * time.Second},
		},
		{
			name:         "Zero retries fails on the first 429",
			maxRetries:   0,
			responses:    []scriptedResponse{{statusCode: http.StatusTooManyRequests}},
			wantAttempts: 1,
			wantDelays:   []time.Duration{},
			wantErr:      ErrRateLimitExhausted,
		},
		{
			name:       "Exhausts retries on persistent 429",
			maxRetries: 2,
			responses: []scriptedResponse{
				{statusCode: http.StatusTooManyRequests},
				{statusCode: http.StatusTooManyRequests},
				{statusCode: http.StatusTooManyRequests},
			},
			wantAttempts: 3, // Initial + 2 retries
			wantDelays:   []time.Duration{1 * time.Second, 2 * time.Second},
			wantErr:      ErrRateLimitExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, attempts := scriptedServer(t, tt.responses)
			client, delays := newTestClient(t, server.URL, tt.maxRetries)

			events, err := client.ListEvents(context.Background(), nil)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ListEvents() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("ListEvents() unexpected error: %v", err)
				}
				if len(events) != 1 || events[0].ID != "evt_1" {
					t.Errorf("ListEvents() = %+v, want the single event of the final page", events)
				}
			}

			if got := atomic.LoadInt32(attempts); got != tt.wantAttempts {
				t.Errorf("made %d attempts, want %d", got, tt.wantAttempts)
			}
			if diff := cmp.Diff(tt.wantDelays, *delays); diff != "" {
				t.Errorf("retry delays mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRateLimitExhaustedError_NamesLimit(t *testing.T) {
	server, _ := scriptedServer(t, []scriptedResponse{
		{statusCode: http.StatusTooManyRequests},
		{statusCode: http.StatusTooManyRequests},
	})
	client, _ := newTestClient(t, server.URL, 1)

	_, err := client.GetEvent(context.Background(), "evt_1")

	var exhausted *RateLimitExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("GetEvent() error = %v, want *RateLimitExhaustedError", err)
	}
	if exhausted.MaxRetries != 1 {
		t.Errorf("MaxRetries = %d, want 1", exhausted.MaxRetries)
	}
	if exhausted.Error() != "rate limit exceeded after 1 retries" {
		t.Errorf("Error() = %q", exhausted.Error())
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		retryCount int
		want       time.Duration
	}{
		{name: "First retry", retryCount: 0, want: 1 * time.Second},
		{name: "Fifth retry", retryCount: 4, want: 16 * time.Second},
		{name: "Retry-After wins", retryAfter: "7", retryCount: 3, want: 7 * time.Second},
		{name: "Retry-After zero", retryAfter: "0", retryCount: 2, want: 0},
		{name: "Negative Retry-After ignored", retryAfter: "-3", retryCount: 1, want: 2 * time.Second},
		{name: "Eleventh retry", retryCount: 11, want: 2048 * time.Second},
		{name: "Twelfth retry is capped", retryCount: 12, want: MaxRetryDelay},
		{name: "Shift overflow is capped", retryCount: 34, want: MaxRetryDelay},
		{name: "Beyond word size is capped", retryCount: 64, want: MaxRetryDelay},
		{name: "Huge Retry-After is capped", retryAfter: "99999999999", retryCount: 0, want: MaxRetryDelay},
		{name: "Retry-After at the cap", retryAfter: "3600", retryCount: 0, want: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.retryAfter != "" {
				header.Set("Retry-After", tt.retryAfter)
			}
			if got := retryDelay(header, tt.retryCount); got != tt.want {
				t.Errorf("retryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEnforceRateLimit checks that consecutive requests are spaced by the
// configured interval
func TestEnforceRateLimit(t *testing.T) {
	const (
		requestsPerSecond = 20
		requests          = 5
	)
	interval := time.Second / requestsPerSecond

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"evt_1"}`)) //nolint:errcheck,gosec
	}))
	defer server.Close()

	client, err := newClient(Config{
		APIKey:            testAPIKey,
		BaseURL:           server.URL,
		RequestsPerSecond: requestsPerSecond,
	})
	if err != nil {
		t.Fatalf("newClient() unexpected error: %v", err)
	}

	start := time.Now()
	for i := 0; i < requests; i++ {
		if _, err := client.GetEvent(context.Background(), "evt_1"); err != nil {
			t.Fatalf("GetEvent() unexpected error: %v", err)
		}
	}
	elapsed := time.Since(start)

	// Allow a millisecond of timer granularity
	want := time.Duration(requests-1)*interval - time.Millisecond
	if elapsed < want {
		t.Errorf("%d requests took %v, want at least %v", requests, elapsed, want)
	}
}

func TestEnforceRateLimit_Cancelled(t *testing.T) {
	client, err := newClient(Config{APIKey: testAPIKey, RequestsPerSecond: 0.01})
	if err != nil {
		t.Fatalf("newClient() unexpected error: %v", err)
	}

	// The first reservation is free; the second has to wait 100s
	if err := client.enforceRateLimit(context.Background()); err != nil {
		t.Fatalf("enforceRateLimit() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.enforceRateLimit(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("enforceRateLimit() error = %v, want context.Canceled", err)
	}
}

// TestEnforceRateLimit_ReportsWait checks that a throttled request is
// reported at the default verbosity
func TestEnforceRateLimit_ReportsWait(t *testing.T) {
	var (
		mu    sync.Mutex
		lines []string
	)
	logger := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 0})
	ctx := log.IntoContext(context.Background(), logger)

	client, err := newClient(Config{APIKey: testAPIKey, RequestsPerSecond: 20})
	if err != nil {
		t.Fatalf("newClient() unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := client.enforceRateLimit(ctx); err != nil {
			t.Fatalf("enforceRateLimit() unexpected error: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 1 || !strings.Contains(lines[0], `"msg"="Rate limiting"`) || !strings.Contains(lines[0], `"waitMs"=`) {
		t.Errorf("log lines = %q, want one rate limiting line with the wait", lines)
	}
}
