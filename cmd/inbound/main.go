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

// Command inbound runs a local receiver for Hookdeck deliveries.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikelane/hookfetch/internal/cli"
	"github.com/mikelane/hookfetch/internal/config"
	"github.com/mikelane/hookfetch/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, newCommand(), os.Stderr)
	stop()
	os.Exit(code)
}

func newCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "inbound",
		Short: "Receive and log webhooks forwarded by Hookdeck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if !cmd.Flags().Changed("host") {
				host = cfg.Server.Host
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}

			server := webhook.NewServer(host, port, cfg.Hookdeck.WebhookSecret, nil)
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "Address to listen on (defaults to $HOST)")
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (defaults to $PORT)")

	return cmd
}
