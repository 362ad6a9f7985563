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

// Command get-events retrieves Hookdeck events with filtering, pagination,
// client-side rate limiting and optional per-event detail enrichment. Results
// are written as indented JSON to stdout or to the file named by --output.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/hookfetch/internal/cli"
	"github.com/mikelane/hookfetch/internal/config"
	"github.com/mikelane/hookfetch/internal/export"
	"github.com/mikelane/hookfetch/internal/hookdeck"
	"github.com/mikelane/hookfetch/internal/query"
)

type options struct {
	filters query.Filters
	output  string
	details bool
}

func main() {
	os.Exit(cli.Run(context.Background(), newCommand(os.Stdout), os.Stderr))
}

func newCommand(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "get-events",
		Short: "Retrieve Hookdeck events with filtering, pagination and rate limiting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), config.Load(), opts, stdout)
		},
	}

	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	statuses := make([]string, 0, len(hookdeck.EventStatuses))
	for _, status := range hookdeck.EventStatuses {
		statuses = append(statuses, string(status))
	}

	flags.StringVar(&opts.filters.Status, "status", "",
		fmt.Sprintf("Filter events by status. Valid values: %s", strings.Join(statuses, ", ")))
	flags.StringVar(&opts.filters.DestinationID, "destination-id", "", "Filter events by destination ID")
	flags.StringVar(&opts.filters.ConnectionID, "connection-id", "", "Filter events by connection ID")
	flags.StringVarP(&opts.output, "output", "o", "", "Write JSON output to file instead of stdout")
	flags.StringVar(&opts.filters.RateLimit, "rate-limit", "1", "Maximum requests per second")
	flags.StringVar(&opts.filters.MaxRetries, "max-retries", "5", "Maximum retry attempts for rate limited requests")
	flags.StringVar(&opts.filters.CreatedAfter, "created-after", "",
		"Filter events created after this date (ISO 8601, e.g. 2024-01-01T00:00:00Z)")
	flags.StringVar(&opts.filters.CreatedBefore, "created-before", "", "Filter events created before this date (ISO 8601)")
	flags.StringVar(&opts.filters.CreatedFrom, "created-from", "", "Filter events created from this date onwards (inclusive)")
	flags.StringVar(&opts.filters.CreatedUntil, "created-until", "", "Filter events created until this date (inclusive)")
	flags.BoolVar(&opts.filters.CreatedAny, "created-any", false, "Filter events that have a created_at value")
	flags.StringVar(&opts.filters.LastDays, "last-days", "", "Filter events from the last N days")
	flags.BoolVar(&opts.details, "details", true, "Fetch the full request data of every event")
}

func run(ctx context.Context, cfg *config.Config, opts *options, stdout io.Writer) error {
	logger := log.FromContext(ctx)

	q, err := query.Build(opts.filters, time.Now())
	if err != nil {
		return err
	}
	params, err := q.Values()
	if err != nil {
		return err
	}

	client, err := hookdeck.NewClient(hookdeck.Config{
		APIKey:            cfg.Hookdeck.APIKey,
		BaseURL:           cfg.Hookdeck.APIURL,
		RequestsPerSecond: q.RequestsPerSecond,
		MaxRetries:        q.MaxRetries,
	})
	if err != nil {
		return err
	}

	logConfiguration(logger, q)

	events, err := client.ListEvents(ctx, params)
	if err != nil {
		return err
	}

	var result any = events
	if opts.details {
		result = hookdeck.EnrichEvents(ctx, client, events)
	}

	if opts.output == "" {
		return export.Write(stdout, result)
	}
	if err := export.WriteFile(opts.output, result); err != nil {
		return err
	}
	logger.Info("Wrote events", "path", opts.output, "events", len(events))
	return nil
}

// logConfiguration reports the resolved settings before any request is made
func logConfiguration(logger logr.Logger, q *query.Query) {
	logger.Info("Rate limiting", "requestsPerSecond", q.RequestsPerSecond, "maxRetries", q.MaxRetries)

	if q.Status != "" {
		logger.Info("Filtering by status", "status", q.Status)
	}
	if q.DestinationID != "" {
		logger.Info("Filtering by destination", "destinationID", q.DestinationID)
	}
	if q.ConnectionID != "" {
		logger.Info("Filtering by connection", "connectionID", q.ConnectionID)
	}
	if q.LastDays > 0 {
		logger.Info("Filtering by recent days", "lastDays", q.LastDays, "since", q.CreatedAt[0].Value)
		return
	}
	for _, d := range q.CreatedAt {
		logger.Info("Filtering by creation date", "operator", d.Operator, "value", d.Value)
	}
}
