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

// Command get-requests lists the requests received by Hookdeck sources and
// fetches the captured data of each one.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	querystring "github.com/google/go-querystring/query"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/hookfetch/internal/cli"
	"github.com/mikelane/hookfetch/internal/config"
	"github.com/mikelane/hookfetch/internal/export"
	"github.com/mikelane/hookfetch/internal/hookdeck"
	"github.com/mikelane/hookfetch/internal/query"
)

// requestFilters are the list parameters of /requests
type requestFilters struct {
	SourceID string `url:"source_id,omitempty"`
	Verified *bool  `url:"verified,omitempty"`
}

type options struct {
	filters    requestFilters
	verified   string
	output     string
	rateLimit  string
	maxRetries string
	details    bool
}

func main() {
	os.Exit(cli.Run(context.Background(), newCommand(os.Stdout), os.Stderr))
}

func newCommand(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "get-requests",
		Short: "Retrieve Hookdeck requests and their captured data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), config.Load(), opts, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.filters.SourceID, "source-id", "", "Filter requests by source ID")
	flags.StringVar(&opts.verified, "verified", "", "Filter requests by signature verification (true or false)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write JSON output to file instead of stdout")
	flags.StringVar(&opts.rateLimit, "rate-limit", "1", "Maximum requests per second")
	flags.StringVar(&opts.maxRetries, "max-retries", "5", "Maximum retry attempts for rate limited requests")
	flags.BoolVar(&opts.details, "details", true, "Fetch the captured data of every request")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *options, stdout io.Writer) error {
	rps, err := query.ParseRateLimit(opts.rateLimit)
	if err != nil {
		return err
	}
	maxRetries, err := query.ParseMaxRetries(opts.maxRetries)
	if err != nil {
		return err
	}

	filters := opts.filters
	switch opts.verified {
	case "":
	case "true", "false":
		verified := opts.verified == "true"
		filters.Verified = &verified
	default:
		return &query.ValidationError{
			Option:  "verified",
			Value:   opts.verified,
			Message: fmt.Sprintf("invalid verified '%s': must be true or false", opts.verified),
		}
	}

	params, err := querystring.Values(filters)
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	client, err := hookdeck.NewClient(hookdeck.Config{
		APIKey:            cfg.Hookdeck.APIKey,
		BaseURL:           cfg.Hookdeck.APIURL,
		RequestsPerSecond: rps,
		MaxRetries:        maxRetries,
	})
	if err != nil {
		return err
	}

	log.FromContext(ctx).Info("Rate limiting", "requestsPerSecond", rps, "maxRetries", maxRetries)

	requests, err := client.ListRequests(ctx, params)
	if err != nil {
		return err
	}

	var result any = requests
	if opts.details {
		result = hookdeck.EnrichRequests(ctx, client, requests)
	}

	if opts.output == "" {
		return export.Write(stdout, result)
	}
	return export.WriteFile(opts.output, result)
}
