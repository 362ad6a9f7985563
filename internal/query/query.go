/*
MIT License

Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	querystring "github.com/google/go-querystring/query"

	"github.com/mikelane/hookfetch/internal/hookdeck"
)

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("invalid filter")

// ValidationError names the option that failed validation
type ValidationError struct {
	Option  string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Operator compares created_at against a timestamp
type Operator string

const (
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
	OpAny Operator = "any"
)

// DateQuery is one created_at predicate. Value is empty for OpAny.
type DateQuery struct {
	Operator Operator
	Value    string
}

// DateQueries combine with AND, each as its own parameter.
type DateQueries []DateQuery

// EncodeValues implements query.Encoder, writing key[op]=value per predicate
func (d DateQueries) EncodeValues(key string, v *url.Values) error {
	for _, q := range d {
		name := fmt.Sprintf("%s[%s]", key, q.Operator)
		switch {
		case q.Operator == OpAny:
			v.Add(name, "")
		case q.Value != "":
			v.Add(name, q.Value)
		}
	}
	return nil
}

// Filters are the raw command-line values, before validation
type Filters struct {
	Status        string
	DestinationID string
	ConnectionID  string
	RateLimit     string
	MaxRetries    string
	CreatedAfter  string
	CreatedBefore string
	CreatedFrom   string
	CreatedUntil  string
	CreatedAny    bool
	LastDays      string
}

// Query is a validated set of list parameters and client settings
type Query struct {
	Status        hookdeck.EventStatus `url:"status,omitempty"`
	DestinationID string               `url:"destination_id,omitempty"`
	ConnectionID  string               `url:"connection_id,omitempty"`
	CreatedAt     DateQueries          `url:"created_at,omitempty"`

	LastDays          int     `url:"-"`
	RequestsPerSecond float64 `url:"-"`
	MaxRetries        int     `url:"-"`
}

// Values encodes the query as URL parameters
func (q *Query) Values() (url.Values, error) {
	values, err := querystring.Values(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return values, nil
}

// timestampLayout is the UTC ISO-8601 form the API expects
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Build validates f and resolves it against now
func Build(f Filters, now time.Time) (*Query, error) {
	q := &Query{
		RequestsPerSecond: hookdeck.DefaultRequestsPerSecond,
		MaxRetries:        hookdeck.DefaultMaxRetries,
		DestinationID:     f.DestinationID,
		ConnectionID:      f.ConnectionID,
	}

	if f.Status != "" {
		status, err := ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q.Status = status
	}

	if f.RateLimit != "" {
		rps, err := ParseRateLimit(f.RateLimit)
		if err != nil {
			return nil, err
		}
		q.RequestsPerSecond = rps
	}

	if f.MaxRetries != "" {
		retries, err := ParseMaxRetries(f.MaxRetries)
		if err != nil {
			return nil, err
		}
		q.MaxRetries = retries
	}

	if f.LastDays != "" {
		days, err := strconv.Atoi(strings.TrimSpace(f.LastDays))
		if err != nil || days <= 0 {
			return nil, &ValidationError{
				Option:  "last-days",
				Value:   f.LastDays,
				Message: fmt.Sprintf("invalid last-days '%s': must be a positive number", f.LastDays),
			}
		}
		q.LastDays = days
	}

	explicit := []struct {
		option string
		value  string
		op     Operator
	}{
		{"created-after", f.CreatedAfter, OpGt},
		{"created-before", f.CreatedBefore, OpLt},
		{"created-from", f.CreatedFrom, OpGte},
		{"created-until", f.CreatedUntil, OpLte},
	}

	hasExplicit := f.CreatedAny
	for _, e := range explicit {
		if e.value != "" {
			hasExplicit = true
		}
	}

	if q.LastDays > 0 {
		if hasExplicit {
			return nil, &ValidationError{
				Option: "last-days",
				Value:  f.LastDays,
				Message: "--last-days cannot be used with other date filters " +
					"(--created-after, --created-before, --created-from, --created-until, --created-any)",
			}
		}
		since := now.Add(-time.Duration(q.LastDays) * 24 * time.Hour)
		q.CreatedAt = DateQueries{{Operator: OpGte, Value: FormatTimestamp(since)}}
		return q, nil
	}

	for _, e := range explicit {
		if e.value == "" {
			continue
		}
		ts, err := ParseTimestamp(e.value)
		if err != nil {
			return nil, &ValidationError{
				Option: e.option,
				Value:  e.value,
				Message: fmt.Sprintf("invalid --%s '%s': use ISO 8601 format (e.g. 2024-01-01T00:00:00Z or 2024-01-01)",
					e.option, e.value),
			}
		}
		q.CreatedAt = append(q.CreatedAt, DateQuery{Operator: e.op, Value: FormatTimestamp(ts)})
	}

	if f.CreatedAny {
		q.CreatedAt = append(q.CreatedAt, DateQuery{Operator: OpAny})
	}

	return q, nil
}

// ParseStatus matches s case-insensitively against the event statuses
func ParseStatus(s string) (hookdeck.EventStatus, error) {
	normalized := hookdeck.EventStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range hookdeck.EventStatuses {
		if status == normalized {
			return status, nil
		}
	}

	valid := make([]string, 0, len(hookdeck.EventStatuses))
	for _, status := range hookdeck.EventStatuses {
		valid = append(valid, string(status))
	}
	return "", &ValidationError{
		Option:  "status",
		Value:   s,
		Message: fmt.Sprintf("invalid status '%s': valid values are %s", s, strings.Join(valid, ", ")),
	}
}

// ParseRateLimit parses a positive requests-per-second value
func ParseRateLimit(s string) (float64, error) {
	rps, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || rps <= 0 || math.IsNaN(rps) || math.IsInf(rps, 0) {
		return 0, &ValidationError{
			Option:  "rate-limit",
			Value:   s,
			Message: fmt.Sprintf("invalid rate-limit '%s': must be a positive number", s),
		}
	}
	return rps, nil
}

// ParseMaxRetries parses a non-negative retry count
func ParseMaxRetries(s string) (int, error) {
	retries, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || retries < 0 {
		return 0, &ValidationError{
			Option:  "max-retries",
			Value:   s,
			Message: fmt.Sprintf("invalid max-retries '%s': must be a non-negative number", s),
		}
	}
	return retries, nil
}

// ParseTimestamp accepts RFC 3339 timestamps and date-only or zoneless
// forms, which are read as UTC
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTimestamp renders ts in UTC with millisecond precision
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(timestampLayout)
}
