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
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikelane/hookfetch/internal/hookdeck"
)

var _ = Describe("Build", func() {
	now := time.Date(2025, 3, 15, 12, 30, 45, 123000000, time.UTC)

	expectValidationError := func(err error, option string) {
		ExpectWithOffset(1, err).To(HaveOccurred())
		ExpectWithOffset(1, errors.Is(err, ErrValidation)).To(BeTrue())
		var validationErr *ValidationError
		ExpectWithOffset(1, errors.As(err, &validationErr)).To(BeTrue())
		ExpectWithOffset(1, validationErr.Option).To(Equal(option))
	}

	Context("with no filters", func() {
		It("uses the default client settings and no parameters", func() {
			q, err := Build(Filters{}, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.RequestsPerSecond).To(BeEquivalentTo(hookdeck.DefaultRequestsPerSecond))
			Expect(q.MaxRetries).To(Equal(hookdeck.DefaultMaxRetries))

			values, err := q.Values()
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(BeEmpty())
		})
	})

	Context("status", func() {
		DescribeTable("normalizes every valid status to upper case",
			func(input string, want hookdeck.EventStatus) {
				q, err := Build(Filters{Status: input}, now)
				Expect(err).NotTo(HaveOccurred())
				Expect(q.Status).To(Equal(want))
			},
			Entry("lower case", "failed", hookdeck.EventStatusFailed),
			Entry("mixed case", "SuCcEsSfUl", hookdeck.EventStatusSuccessful),
			Entry("upper case", "SCHEDULED", hookdeck.EventStatusScheduled),
			Entry("queued", "queued", hookdeck.EventStatusQueued),
			Entry("hold", "Hold", hookdeck.EventStatusHold),
		)

		DescribeTable("rejects anything else",
			func(input string) {
				_, err := Build(Filters{Status: input}, now)
				expectValidationError(err, "status")
				Expect(err.Error()).To(ContainSubstring("SCHEDULED, QUEUED, HOLD, SUCCESSFUL, FAILED"))
			},
			Entry("unknown word", "DELIVERED"),
			Entry("prefix", "FAIL"),
			Entry("with suffix", "FAILED!"),
		)
	})

	Context("client settings", func() {
		It("parses a fractional rate limit", func() {
			q, err := Build(Filters{RateLimit: "2.5", MaxRetries: "0"}, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.RequestsPerSecond).To(Equal(2.5))
			Expect(q.MaxRetries).To(Equal(0))
		})

		DescribeTable("rejects invalid rate limits",
			func(input string) {
				_, err := Build(Filters{RateLimit: input}, now)
				expectValidationError(err, "rate-limit")
			},
			Entry("zero", "0"),
			Entry("negative", "-1"),
			Entry("not a number", "fast"),
			Entry("NaN", "NaN"),
			Entry("infinite", "Inf"),
		)

		DescribeTable("rejects invalid retry counts",
			func(input string) {
				_, err := Build(Filters{MaxRetries: input}, now)
				expectValidationError(err, "max-retries")
			},
			Entry("negative", "-1"),
			Entry("fractional", "1.5"),
			Entry("not a number", "many"),
		)
	})

	Context("last-days", func() {
		It("resolves to a single gte predicate N days before now", func() {
			q, err := Build(Filters{LastDays: "7"}, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.LastDays).To(Equal(7))
			Expect(q.CreatedAt).To(HaveLen(1))
			Expect(q.CreatedAt[0].Operator).To(Equal(OpGte))

			since, err := time.Parse(time.RFC3339, q.CreatedAt[0].Value)
			Expect(err).NotTo(HaveOccurred())
			Expect(since).To(BeTemporally("~", now.AddDate(0, 0, -7), time.Second))
			Expect(q.CreatedAt[0].Value).To(Equal("2025-03-08T12:30:45.123Z"))
		})

		It("stays within a second of the real clock", func() {
			q, err := Build(Filters{LastDays: "30"}, time.Now())
			Expect(err).NotTo(HaveOccurred())

			since, err := time.Parse(time.RFC3339, q.CreatedAt[0].Value)
			Expect(err).NotTo(HaveOccurred())
			Expect(since).To(BeTemporally("~", time.Now().Add(-30*24*time.Hour), time.Second))
		})

		DescribeTable("rejects non-positive values",
			func(input string) {
				_, err := Build(Filters{LastDays: input}, now)
				expectValidationError(err, "last-days")
			},
			Entry("zero", "0"),
			Entry("negative", "-2"),
			Entry("not a number", "week"),
		)

		DescribeTable("cannot be combined with explicit date options",
			func(f Filters) {
				f.LastDays = "3"
				_, err := Build(f, now)
				expectValidationError(err, "last-days")
				Expect(err.Error()).To(ContainSubstring("--last-days cannot be used with other date filters"))
			},
			Entry("created-after", Filters{CreatedAfter: "2024-01-01"}),
			Entry("created-before", Filters{CreatedBefore: "2024-01-01"}),
			Entry("created-from", Filters{CreatedFrom: "2024-01-01"}),
			Entry("created-until", Filters{CreatedUntil: "2024-01-01"}),
			Entry("created-any", Filters{CreatedAny: true}),
			Entry("several at once", Filters{CreatedFrom: "2024-01-01", CreatedAny: true}),
			Entry("an invalid explicit date", Filters{CreatedAfter: "not-a-date"}),
		)
	})

	Context("explicit dates", func() {
		It("maps each option to its operator", func() {
			q, err := Build(Filters{
				CreatedAfter:  "2024-01-01T00:00:00Z",
				CreatedBefore: "2024-02-01",
				CreatedFrom:   "2024-01-01T10:00:00+02:00",
				CreatedUntil:  "2024-01-31T23:59",
			}, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.CreatedAt).To(Equal(DateQueries{
				{Operator: OpGt, Value: "2024-01-01T00:00:00.000Z"},
				{Operator: OpLt, Value: "2024-02-01T00:00:00.000Z"},
				{Operator: OpGte, Value: "2024-01-01T08:00:00.000Z"},
				{Operator: OpLte, Value: "2024-01-31T23:59:00.000Z"},
			}))
		})

		It("adds an any predicate without a value", func() {
			q, err := Build(Filters{CreatedAny: true}, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.CreatedAt).To(Equal(DateQueries{{Operator: OpAny}}))
		})

		It("names the offending option and value", func() {
			_, err := Build(Filters{CreatedUntil: "2024-13-45"}, now)
			expectValidationError(err, "created-until")
			Expect(err.Error()).To(ContainSubstring("--created-until '2024-13-45'"))
		})
	})

	Context("encoding", func() {
		It("writes every predicate as its own parameter", func() {
			q, err := Build(Filters{
				Status:        "failed",
				DestinationID: "des_123",
				ConnectionID:  "web_456",
				CreatedFrom:   "2024-01-01",
				CreatedUntil:  "2024-01-31",
				CreatedAny:    true,
			}, now)
			Expect(err).NotTo(HaveOccurred())

			values, err := q.Values()
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal(url.Values{
				"status":          {"FAILED"},
				"destination_id":  {"des_123"},
				"connection_id":   {"web_456"},
				"created_at[gte]": {"2024-01-01T00:00:00.000Z"},
				"created_at[lte]": {"2024-01-31T00:00:00.000Z"},
				"created_at[any]": {""},
			}))
			Expect(strings.Contains(values.Encode(), "created_at%5Bany%5D=")).To(BeTrue())
		})
	})
})

var _ = Describe("ParseTimestamp", func() {
	DescribeTable("accepts ISO 8601 forms",
		func(input, want string) {
			ts, err := ParseTimestamp(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(FormatTimestamp(ts)).To(Equal(want))
		},
		Entry("date only", "2024-01-01", "2024-01-01T00:00:00.000Z"),
		Entry("UTC with Z", "2024-01-01T12:00:00Z", "2024-01-01T12:00:00.000Z"),
		Entry("fractional seconds", "2024-01-01T12:00:00.5Z", "2024-01-01T12:00:00.500Z"),
		Entry("offset", "2024-01-01T12:00:00-05:00", "2024-01-01T17:00:00.000Z"),
		Entry("no zone", "2024-01-01T12:00:00", "2024-01-01T12:00:00.000Z"),
	)

	It("rejects garbage", func() {
		_, err := ParseTimestamp("yesterday")
		Expect(err).To(HaveOccurred())
	})
})
