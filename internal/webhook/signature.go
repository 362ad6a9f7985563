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

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
)

const (
	// SignatureHeader carries the base64 HMAC-SHA256 of the request body
	SignatureHeader = "X-Hookdeck-Signature"
	// SignatureHeader2 carries the signature computed with the second secret
	// during a secret rotation
	SignatureHeader2 = "X-Hookdeck-Signature-2"
)

// ComputeSignature returns the base64-encoded HMAC-SHA256 of payload
func ComputeSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature verifies a Hookdeck webhook payload against the signature
// headers. It returns true if either header holds the expected signature.
//
// An empty secret rejects every payload; callers that accept unsigned
// deliveries must check for that before calling.
func ValidateSignature(payload []byte, headers http.Header, secret string) bool {
	if secret == "" {
		return false
	}

	expected := []byte(ComputeSignature(payload, secret))
	for _, name := range []string{SignatureHeader, SignatureHeader2} {
		received := headers.Get(name)
		if received == "" {
			continue
		}
		// Constant-time comparison to prevent timing attacks
		if hmac.Equal([]byte(received), expected) {
			return true
		}
	}
	return false
}
