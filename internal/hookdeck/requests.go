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

// ListRequests retrieves every request matching params
func (c *hookdeckClient) ListRequests(ctx context.Context, params url.Values) ([]Request, error) {
	requests, err := paginate[Request](ctx, c, "requests", params)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// GetRequest retrieves a single request including its data
func (c *hookdeckClient) GetRequest(ctx context.Context, id string) (*DetailedRequest, error) {
	var request DetailedRequest
	if err := c.getJSON(ctx, c.resourceURL("requests", id), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// EnrichRequests is the request counterpart of EnrichEvents
func EnrichRequests(ctx context.Context, client Client, requests []Request) []DetailedRequest {
	logger := log.FromContext(ctx)
	logger.Info("Fetching detailed information", "requests", len(requests))

	detailed := make([]DetailedRequest, 0, len(requests))
	for i, request := range requests {
		logger.V(1).Info("Fetching request details", "request", fmt.Sprintf("%d/%d", i+1, len(requests)), "id", request.ID)

		result, err := client.GetRequest(ctx, request.ID)
		if err != nil {
			logger.Error(&DetailFetchError{ID: request.ID, Err: err}, "Keeping request without details", "id", request.ID)
			detailed = append(detailed, DetailedRequest{Request: request})
			continue
		}
		detailed = append(detailed, *result)
	}

	return detailed
}
