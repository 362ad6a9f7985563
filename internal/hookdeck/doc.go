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

// Package hookdeck provides a client for the Hookdeck REST API.
//
// The client retrieves events and requests page by page, enriches each record
// with its detailed representation, and upserts connections.
//
// Key features:
//   - Bearer-token authentication on every request
//   - Client-side throttling to a configured number of requests per second
//   - Retry with exponential backoff on HTTP 429 responses
//   - Cursor pagination that preserves server order
//   - Open record types that keep fields the client does not model
//
// Example usage:
//
//	client, err := hookdeck.NewClient(hookdeck.Config{
//	    APIKey:            os.Getenv("HOOKDECK_API_KEY"),
//	    RequestsPerSecond: 1,
//	    MaxRetries:        5,
//	})
//	if err != nil {
//	    return err
//	}
//
//	events, err := client.ListEvents(ctx, url.Values{"status": {"FAILED"}})
//	if err != nil {
//	    return err
//	}
//	detailed := hookdeck.EnrichEvents(ctx, client, events)
//
// Rate Limiting:
//
// Requests never depart closer together than 1/RequestsPerSecond. The limiter
// holds a single token, so idle periods do not allow a burst afterwards.
//
// Retry Logic:
//
// A 429 response is retried after the delay given by its Retry-After header,
// or after 2^n seconds when the header is absent, where n is the number of
// retries already made. Once MaxRetries retries have been spent the request
// fails with a RateLimitExhaustedError. Any other non-2xx response fails
// immediately with an HTTPError.
package hookdeck
