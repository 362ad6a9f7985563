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
	"fmt"
	"net/url"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ListEvents retrieves every event matching params, following the pagination
// cursor until the server stops returning one
func (c *hookdeckClient) ListEvents(ctx context.Context, params url.Values) ([]Event, error) {
	events, err := paginate[Event](ctx, c, "events", params)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent retrieves a single event including its request data
func (c *hookdeckClient) GetEvent(ctx context.Context, id string) (*DetailedEvent, error) {
	var event DetailedEvent
	if err := c.getJSON(ctx, c.resourceURL("events", id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// EnrichEvents replaces each event with its detailed form, in order. An event
// whose lookup fails is kept as the summary and the failure is logged.
func EnrichEvents(ctx context.Context, client Client, events []Event) []DetailedEvent {
	logger := log.FromContext(ctx)
	logger.Info("Fetching detailed information", "events", len(events))

	detailed := make([]DetailedEvent, 0, len(events))
	for i, event := range events {
		logger.V(1).Info("Fetching event details", "event", fmt.Sprintf("%d/%d", i+1, len(events)), "id", event.ID)

		result, err := client.GetEvent(ctx, event.ID)
		if err != nil {
			logger.Error(&DetailFetchError{ID: event.ID, Err: err}, "Keeping event without details", "id", event.ID)
			detailed = append(detailed, DetailedEvent{Event: event})
			continue
		}
		detailed = append(detailed, *result)
	}

	logger.Info("Completed detailed fetch", "events", len(detailed))
	return detailed
}

// paginate walks a list endpoint. The first page is requested with params and
// every following page with the server's next cursor, verbatim. Records are
// returned in arrival order without deduplication.
func paginate[T any](ctx context.Context, c *hookdeckClient, resource string, params url.Values) ([]T, error) {
	logger := log.FromContext(ctx)

	all := []T{} // Initialize as empty slice, not nil
	next := c.resourceURL(resource, "") + "?" + params.Encode()
	pages := 0

	logger.Info("Starting to fetch", "resource", resource)

	for next != "" {
		pages++
		logger.V(1).Info("Fetching page", "resource", resource, "page", pages)

		var page Page[T]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Models...)
		logger.Info("Fetched page",
			"resource", resource,
			"page", pages,
			"found", len(page.Models),
			"total", len(all),
			"count", page.Count)

		if page.Pagination.Next == "" {
			break
		}
		next = c.resourceURL(resource, "") + "?" + page.Pagination.Next
	}

	logger.Info("Completed", "resource", resource, "records", len(all), "pages", pages)
	return all, nil
}

func (c *hookdeckClient) resourceURL(resource, id string) string {
	if id == "" {
		return c.baseURL + "/" + resource
	}
	return c.baseURL + "/" + resource + "/" + url.PathEscape(id)
}
