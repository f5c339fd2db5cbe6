package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCheckCmd creates the 'check' subcommand: one fetch, one matching pass,
// at most one notification fan-out, then exit.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Runs one storefront check and exits",
		Long: `Fetches the storefront page once, applies the matching heuristics, and
notifies the configured channels if the variant appears. Exits zero whether or
not the variant was found; exits non-zero on a fetch failure.`,
		RunE: runCheckCommand,
	}
}

func runCheckCommand(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.runner.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("storefront check: %w", err)
	}

	if report.Found {
		a.logger.Info("check finished: variant available",
			zap.Int("listings", len(report.Matches)),
			zap.String("run_id", report.RunID),
		)
	} else {
		a.logger.Info("check finished: variant not available",
			zap.String("run_id", report.RunID),
		)
	}
	return nil
}
