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

// Package webhook provides the receiving end of Hookdeck deliveries.
//
// This package implements an HTTP server that accepts webhooks forwarded by a
// Hookdeck connection, verifies them and logs their payload.
//
// Key features:
//   - Verifies Hookdeck signatures (base64 HMAC-SHA256 of the raw body)
//   - Accepts deliveries on any path, answering {"status":"ACCEPTED"}
//   - Tags every delivery with a trace id (X-Trace-ID or a generated UUID)
//   - Provides per-source rate limiting
//   - Health check endpoint
//
// Webhook Security:
//
// A delivery must carry a valid X-Hookdeck-Signature or
// X-Hookdeck-Signature-2 header computed with the webhook secret. The second
// header is set while a secret is being rotated. Requests with invalid or
// missing signatures are rejected with HTTP 401. When no secret is
// configured, verification is skipped.
//
// Rate Limiting:
//
// Requests are rate-limited per source (X-Hookdeck-Source-Name, falling back
// to the remote address) using a token bucket. The default limit is 10
// requests per second per source. Requests exceeding the limit receive
// HTTP 429 Too Many Requests, which Hookdeck retries.
//
// Example usage:
//
//	server := webhook.NewServer("0.0.0.0", 3032, secret, nil)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
