// Copyright 2025 The Hookfetch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

const (
	// SourceNameHeader names the Hookdeck source that forwarded a delivery
	SourceNameHeader = "X-Hookdeck-Source-Name"
	// EventIDHeader carries the Hookdeck event id of a delivery
	EventIDHeader = "X-Hookdeck-Event-Id"
	// TraceIDHeader correlates a delivery across log lines and the response
	TraceIDHeader = "X-Trace-ID"
)

// Delivery is one webhook received from Hookdeck
type Delivery struct {
	TraceID string
	Source  string
	EventID string
	Path    string
	Payload []byte
}

// Handler processes a verified delivery. A returned error answers the
// delivery with HTTP 500 so that Hookdeck retries it.
type Handler func(delivery *Delivery) error

// acceptedResponse acknowledges a delivery
type acceptedResponse struct {
	Status string `json:"status"`
}

// errorResponse explains a rejected delivery
type errorResponse struct {
	Message string `json:"message"`
}
