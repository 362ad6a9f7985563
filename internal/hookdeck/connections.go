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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// UpsertConnection creates the connection named by input, or updates it when
// a connection with that name already exists
func (c *hookdeckClient) UpsertConnection(ctx context.Context, input *ConnectionInput) (*Connection, error) {
	if input == nil || input.Name == "" {
		return nil, errors.New("connection name is required")
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connection: %w", err)
	}

	payload, err := c.do(ctx, call{
		method: http.MethodPut,
		url:    c.resourceURL("connections", ""),
		body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert connection: %w", err)
	}

	var connection Connection
	if err := decode(payload, &connection); err != nil {
		return nil, err
	}

	log.FromContext(ctx).Info("Upserted connection",
		"id", connection.ID,
		"name", connection.Name,
		"sourceURL", connection.Source.URL)
	return &connection, nil
}

// Publish sends payload to the source identified by sourceID through the
// Publish API
func (c *hookdeckClient) Publish(ctx context.Context, sourceID string, payload any) error {
	if sourceID == "" {
		return errors.New("source ID is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	_, err = c.do(ctx, call{
		method: http.MethodPost,
		url:    c.publishURL,
		body:   body,
		header: http.Header{"X-Hookdeck-Source-Id": []string{sourceID}},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// SendToSource posts payload to a source URL the way any webhook provider
// would, without API credentials
func (c *hookdeckClient) SendToSource(ctx context.Context, sourceURL string, payload any) ([]byte, error) {
	if sourceURL == "" {
		return nil, errors.New("source URL is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	response, err := c.do(ctx, call{
		method: http.MethodPost,
		url:    sourceURL,
		body:   body,
		noAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send to source: %w", err)
	}
	return response, nil
}
