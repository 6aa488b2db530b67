package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/internal/detector"
	"github.com/hcastellani/roost-cli/internal/observability"
	"github.com/hcastellani/roost-cli/internal/store"
)

// newValidateCmd creates and configures the `validate` command.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Re-checks every account in the saved configuration without rewriting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			d := detector.New(appConfig, logger)
			report, err := d.ValidateExistingConfiguration(ctx)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					fmt.Printf("No account file at %s. Run `roost detect` first.\n", appConfig.Store.Path)
					return nil
				}
				logger.Error("Validation failed", zap.Error(err))
				return err
			}

			fmt.Printf("\n%d of %d saved account(s) still authenticate.\n",
				len(report.Valid), report.TotalOriginal)
			for _, s := range report.Valid {
				fmt.Printf("  @%s (%s)\n", s.Username, s.Name)
			}
			if len(report.Valid) < report.TotalOriginal {
				fmt.Println("Run `roost detect` to refresh the account file.")
			}
			return nil
		},
	}
}
