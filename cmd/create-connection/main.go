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

// Command create-connection creates or updates a Hookdeck connection and
// optionally sends a test event through it.
package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/hookfetch/internal/cli"
	"github.com/mikelane/hookfetch/internal/config"
	"github.com/mikelane/hookfetch/internal/export"
	"github.com/mikelane/hookfetch/internal/hookdeck"
)

type options struct {
	name           string
	source         string
	destination    string
	destinationURL string
	cliPath        string
	sendTest       bool
	publish        bool
}

// testPayload is sent through the connection when --send-test is set
var testPayload = map[string]string{"text": "Hello, World!"}

func main() {
	os.Exit(cli.Run(context.Background(), newCommand(os.Stdout), os.Stderr))
}

func newCommand(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "create-connection",
		Short: "Create or update a Hookdeck connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), config.Load(), opts, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "inbound-example", "Connection name")
	flags.StringVar(&opts.source, "source", "inbound", "Source name")
	flags.StringVar(&opts.destination, "destination", "outbound", "Destination name")
	flags.StringVar(&opts.destinationURL, "destination-url", "https://mock.hookdeck.com", "HTTP destination URL")
	flags.StringVar(&opts.cliPath, "cli-path", "",
		"Also create a connection from the same source to a CLI destination with this path")
	flags.BoolVar(&opts.sendTest, "send-test", true, "Send a test event to the source")
	flags.BoolVar(&opts.publish, "publish", false, "Send the test event through the Publish API instead of the source URL")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *options, stdout io.Writer) error {
	logger := log.FromContext(ctx)

	client, err := hookdeck.NewClient(hookdeck.Config{
		APIKey:     cfg.Hookdeck.APIKey,
		BaseURL:    cfg.Hookdeck.APIURL,
		PublishURL: cfg.Hookdeck.PublishURL,
		MaxRetries: hookdeck.DefaultMaxRetries,
	})
	if err != nil {
		return err
	}

	connection, err := client.UpsertConnection(ctx, &hookdeck.ConnectionInput{
		Name:        opts.name,
		Source:      hookdeck.SourceInput{Name: opts.source},
		Destination: hookdeck.DestinationInput{Name: opts.destination, URL: opts.destinationURL},
	})
	if err != nil {
		return err
	}
	logger.Info("Created or updated connection", "sourceURL", connection.Source.URL)

	connections := []*hookdeck.Connection{connection}

	if opts.cliPath != "" {
		cliConnection, err := client.UpsertConnection(ctx, &hookdeck.ConnectionInput{
			Name:        opts.name + "-with-cli",
			Source:      hookdeck.SourceInput{Name: connection.Source.Name},
			Destination: hookdeck.DestinationInput{Name: "localhost", CLIPath: opts.cliPath},
		})
		if err != nil {
			return err
		}
		logger.Info("Created or updated connection with CLI destination", "cliPath", cliConnection.Destination.CLIPath)
		connections = append(connections, cliConnection)
	}

	if opts.sendTest {
		if err := sendTestEvent(ctx, client, connection, opts.publish); err != nil {
			return err
		}
	}

	return export.Write(stdout, connections)
}

func sendTestEvent(ctx context.Context, client hookdeck.Client, connection *hookdeck.Connection, publish bool) error {
	logger := log.FromContext(ctx)

	if publish {
		if err := client.Publish(ctx, connection.Source.ID, testPayload); err != nil {
			return err
		}
		logger.Info("Published event", "sourceID", connection.Source.ID)
		return nil
	}

	response, err := client.SendToSource(ctx, connection.Source.URL, testPayload)
	if err != nil {
		return err
	}
	logger.Info("Sent request to connection source", "response", string(response))
	return nil
}
