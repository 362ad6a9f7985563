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
	"net/url"
)

// Client interface defines the contract for interacting with the Hookdeck API
type Client interface {
	// ListEvents pages through /events and returns every event in server order
	ListEvents(ctx context.Context, params url.Values) ([]Event, error)
	// GetEvent retrieves a single event including its request data
	GetEvent(ctx context.Context, id string) (*DetailedEvent, error)
	// ListRequests pages through /requests and returns every request in server order
	ListRequests(ctx context.Context, params url.Values) ([]Request, error)
	// GetRequest retrieves a single request including its data
	GetRequest(ctx context.Context, id string) (*DetailedRequest, error)
	// UpsertConnection creates or updates the connection with the given name
	UpsertConnection(ctx context.Context, input *ConnectionInput) (*Connection, error)
	// Publish sends a payload to a source through the Publish API
	Publish(ctx context.Context, sourceID string, payload any) error
	// SendToSource posts a payload to a source URL and returns the response body
	SendToSource(ctx context.Context, sourceURL string, payload any) ([]byte, error)
}

// EventStatus is the delivery status of an event
type EventStatus string

const (
	// EventStatusScheduled indicates the event is waiting for its next attempt
	EventStatusScheduled EventStatus = "SCHEDULED"
	// EventStatusQueued indicates the event is queued for delivery
	EventStatusQueued EventStatus = "QUEUED"
	// EventStatusHold indicates delivery is paused
	EventStatusHold EventStatus = "HOLD"
	// EventStatusSuccessful indicates the destination accepted the event
	EventStatusSuccessful EventStatus = "SUCCESSFUL"
	// EventStatusFailed indicates delivery failed
	EventStatusFailed EventStatus = "FAILED"
)

// EventStatuses lists every valid status in display order.
var EventStatuses = []EventStatus{
	EventStatusScheduled,
	EventStatusQueued,
	EventStatusHold,
	EventStatusSuccessful,
	EventStatusFailed,
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Models     []T        `json:"models"`
	Pagination Pagination `json:"pagination"`
	Count      int        `json:"count"`
}

// Pagination carries the cursors of a page. An empty Next ends pagination.
type Pagination struct {
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Event is a delivery attempt of a request to a destination.
// Members the client does not model are kept in Extra.
type Event struct {
	ID             string
	TeamID         string
	ConnectionID   string
	SourceID       string
	DestinationID  string
	RequestID      string
	EventDataID    string
	Status         EventStatus
	Attempts       int
	ResponseStatus int
	SuccessfulAt   string
	LastAttemptAt  string
	NextAttemptAt  string
	CreatedAt      string
	UpdatedAt      string
	Extra          Fields
}

func (e *Event) fields() map[string]any {
	return map[string]any{
		"id":              &e.ID,
		"team_id":         &e.TeamID,
		"connection_id":   &e.ConnectionID,
		"source_id":       &e.SourceID,
		"destination_id":  &e.DestinationID,
		"request_id":      &e.RequestID,
		"event_data_id":   &e.EventDataID,
		"status":          &e.Status,
		"attempts":        &e.Attempts,
		"response_status": &e.ResponseStatus,
		"successful_at":   &e.SuccessfulAt,
		"last_attempt_at": &e.LastAttemptAt,
		"next_attempt_at": &e.NextAttemptAt,
		"created_at":      &e.CreatedAt,
		"updated_at":      &e.UpdatedAt,
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Event) UnmarshalJSON(data []byte) error {
	*e = Event{}
	extra, err := decodeRecord(data, e.fields())
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler
func (e Event) MarshalJSON() ([]byte, error) {
	return encodeRecord(e.Extra, e.fields())
}

// DetailedEvent is an Event with the data of the request that produced it.
// A nil Data marshals exactly like the embedded Event.
type DetailedEvent struct {
	Event
	Data *RequestData
}

// UnmarshalJSON implements json.Unmarshaler
func (d *DetailedEvent) UnmarshalJSON(data []byte) error {
	*d = DetailedEvent{}
	if err := d.Event.UnmarshalJSON(data); err != nil {
		return err
	}
	d.Data = takeData(&d.Event.Extra)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d DetailedEvent) MarshalJSON() ([]byte, error) {
	event := d.Event
	event.Extra = withData(event.Extra, d.Data)
	return event.MarshalJSON()
}

// Request is an inbound HTTP request received by a source.
// Members the client does not model are kept in Extra.
type Request struct {
	ID                  string
	TeamID              string
	SourceID            string
	Verified            bool
	RejectionCause      string
	EventsCount         int
	IgnoredCount        int
	OriginalEventDataID string
	IngestedAt          string
	CreatedAt           string
	UpdatedAt           string
	Extra               Fields
}

func (r *Request) fields() map[string]any {
	return map[string]any{
		"id":                     &r.ID,
		"team_id":                &r.TeamID,
		"source_id":              &r.SourceID,
		"verified":               &r.Verified,
		"rejection_cause":        &r.RejectionCause,
		"events_count":           &r.EventsCount,
		"ignored_count":          &r.IgnoredCount,
		"original_event_data_id": &r.OriginalEventDataID,
		"ingested_at":            &r.IngestedAt,
		"created_at":             &r.CreatedAt,
		"updated_at":             &r.UpdatedAt,
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Request) UnmarshalJSON(data []byte) error {
	*r = Request{}
	extra, err := decodeRecord(data, r.fields())
	if err != nil {
		return err
	}
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler
func (r Request) MarshalJSON() ([]byte, error) {
	return encodeRecord(r.Extra, r.fields())
}

// DetailedRequest is a Request with its headers, body and query.
type DetailedRequest struct {
	Request
	Data *RequestData
}

// UnmarshalJSON implements json.Unmarshaler
func (d *DetailedRequest) UnmarshalJSON(data []byte) error {
	*d = DetailedRequest{}
	if err := d.Request.UnmarshalJSON(data); err != nil {
		return err
	}
	d.Data = takeData(&d.Request.Extra)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d DetailedRequest) MarshalJSON() ([]byte, error) {
	request := d.Request
	request.Extra = withData(request.Extra, d.Data)
	return request.MarshalJSON()
}

// RequestData is the captured HTTP payload of a request or event.
type RequestData struct {
	Path        string
	Headers     map[string]string
	Body        json.RawMessage
	ParsedQuery map[string]json.RawMessage
	Extra       Fields
}

func (d *RequestData) fields() map[string]any {
	return map[string]any{
		"path":         &d.Path,
		"headers":      &d.Headers,
		"body":         &d.Body,
		"parsed_query": &d.ParsedQuery,
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (d *RequestData) UnmarshalJSON(data []byte) error {
	*d = RequestData{}
	extra, err := decodeRecord(data, d.fields())
	if err != nil {
		return err
	}
	d.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler
func (d RequestData) MarshalJSON() ([]byte, error) {
	return encodeRecord(d.Extra, d.fields())
}

// takeData moves the "data" member out of extra when it decodes as RequestData.
func takeData(extra *Fields) *RequestData {
	raw, ok := (*extra)["data"]
	if !ok || isZeroJSON(raw) {
		return nil
	}
	var data RequestData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	delete(*extra, "data")
	if len(*extra) == 0 {
		*extra = nil
	}
	return &data
}

func withData(extra Fields, data *RequestData) Fields {
	if data == nil {
		return extra
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return extra
	}
	out := cloneFields(extra)
	if out == nil {
		out = Fields{}
	}
	out["data"] = encoded
	return out
}

// SourceInput names the source of a connection upsert
type SourceInput struct {
	Name   string         `json:"name"`
	Type   string         `json:"type,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// DestinationInput names the destination of a connection upsert
type DestinationInput struct {
	Name    string         `json:"name"`
	Type    string         `json:"type,omitempty"`
	URL     string         `json:"url,omitempty"`
	CLIPath string         `json:"cli_path,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// ConnectionInput is the body of PUT /connections
type ConnectionInput struct {
	Name        string           `json:"name"`
	Source      SourceInput      `json:"source"`
	Destination DestinationInput `json:"destination"`
}

// Connection is the response of a connection upsert
type Connection struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Source      Source      `json:"source"`
	Destination Destination `json:"destination"`
}

// Source receives requests on its URL
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Destination is where events are delivered
type Destination struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	URL     string `json:"url,omitempty"`
	CLIPath string `json:"cli_path,omitempty"`
}
