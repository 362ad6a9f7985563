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
	"bytes"
	"encoding/json"
	"reflect"
)

// Fields holds the members of a JSON object that are not mapped to a typed
// struct field. They are written back unchanged when the record is encoded.
type Fields map[string]json.RawMessage

// decodeRecord unmarshals data into the typed destinations in core and
// returns whatever is left over. A member stays in the returned Fields when it
// is null, holds a zero value, or does not fit its typed destination, so that
// encodeRecord can reproduce it exactly.
func decodeRecord(data []byte, core map[string]any) (Fields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	for key, dst := range core {
		value, ok := raw[key]
		if !ok || isZeroJSON(value) {
			continue
		}
		// Decode into a fresh value so a member that fails halfway leaves dst
		// untouched
		target := reflect.New(reflect.TypeOf(dst).Elem())
		if err := json.Unmarshal(value, target.Interface()); err != nil {
			continue
		}
		reflect.ValueOf(dst).Elem().Set(target.Elem())
		delete(raw, key)
	}

	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// encodeRecord merges the extension fields with the non-zero typed fields.
// Typed fields win when both carry the same key.
func encodeRecord(extra Fields, core map[string]any) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(extra)+len(core))
	for key, value := range extra {
		out[key] = value
	}

	for key, src := range core {
		if reflect.ValueOf(src).Elem().IsZero() {
			continue
		}
		encoded, err := json.Marshal(src)
		if err != nil {
			return nil, err
		}
		out[key] = encoded
	}

	return json.Marshal(out)
}

func isZeroJSON(value json.RawMessage) bool {
	switch string(bytes.TrimSpace(value)) {
	case "null", `""`, "0", "false":
		return true
	}
	return false
}

func cloneFields(f Fields) Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for key, value := range f {
		out[key] = value
	}
	return out
}
