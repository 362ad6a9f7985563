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
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned by NewClient when no API key is configured.
	ErrMissingAPIKey = errors.New("HOOKDECK_API_KEY environment variable is required")

	// ErrRateLimitExhausted matches every RateLimitExhaustedError.
	ErrRateLimitExhausted = errors.New("rate limit exhausted")
)

// RateLimitExhaustedError is returned when a request is still rate limited
// after MaxRetries retries.
type RateLimitExhaustedError struct {
	MaxRetries int
}

func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d retries", e.MaxRetries)
}

// Is reports whether target is ErrRateLimitExhausted.
func (e *RateLimitExhaustedError) Is(target error) bool {
	return target == ErrRateLimitExhausted
}

// HTTPError is a non-2xx, non-429 response. It is never retried.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.StatusCode, e.Status)
}

// TransportError wraps a failure to reach the API or to read its response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return "unknown error occurred while fetching from Hookdeck API"
	}
	return "failed to fetch from Hookdeck API: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DetailFetchError records a failed detail lookup for a single record.
// Enrichment recovers from it by keeping the summary record.
type DetailFetchError struct {
	ID  string
	Err error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("failed to fetch details for %s: %v", e.ID, e.Err)
}

func (e *DetailFetchError) Unwrap() error {
	return e.Err
}
