// Package cmd defines and implements the CLI commands for the refurbwatch
// executable.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refurbwatch",
		Short: "Watches a refurbished storefront page for a product variant.",
		Long: `refurbwatch polls a retailer's certified-refurbished storefront for the
appearance of a specific product variant (by default, the MacBook Air with the
M4 chip on the Apple Japan refurbished store) and notifies the configured
channels when it shows up.

Scheduling is external: run 'check' from cron or a CI timer for one-shot
polling, or 'serve' to expose a trigger endpoint and Prometheus metrics.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (defaults apply, overridable via REFURBWATCH_* env vars)")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point. It exits non-zero when a command fails.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
