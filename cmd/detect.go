package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/internal/config"
	"github.com/hcastellani/roost-cli/internal/detector"
	"github.com/hcastellani/roost-cli/internal/observability"
)

// newDetectCmd creates and configures the `detect` command.
func newDetectCmd() *cobra.Command {
	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Discovers and validates live sessions, then saves them to the account file",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			if err := viper.BindPFlag("detection.overall_budget", cmd.Flags().Lookup("budget")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-resolve the config now that flags are bound, so command line
			// overrides take precedence over file and environment values.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}
			appConfig = cfg

			d := detector.New(appConfig, logger)
			report, err := d.DetectSessions(ctx)
			if err != nil {
				logger.Error("Detection failed", zap.Error(err))
				return err
			}

			fmt.Printf("\nDetection complete: %d candidate(s), %d valid session(s).\n",
				report.RawCandidates, len(report.Sessions))
			for _, s := range report.Sessions {
				fmt.Printf("  @%s (%s) following=%d followers=%d\n",
					s.Username, s.Name, s.Metrics.Following, s.Metrics.Followers)
			}

			switch {
			case report.PersistErr != nil:
				fmt.Printf("WARNING: sessions were detected but could not be saved: %v\n", report.PersistErr)
			case report.Saved:
				fmt.Printf("Saved to %s\n", appConfig.Store.Path)
			default:
				fmt.Println("No sessions found; existing account file left untouched.")
			}
			return nil
		},
	}

	detectCmd.Flags().Bool("headless", true, "Run the browser headless. (Overrides config/env)")
	detectCmd.Flags().Duration("budget", 0, "Overall time budget for discovery. (Overrides config/env)")

	return detectCmd
}
