package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/browser"
	"github.com/hcastellani/roost-cli/internal/config"
	"github.com/hcastellani/roost-cli/internal/engage"
	"github.com/hcastellani/roost-cli/internal/observability"
	"github.com/hcastellani/roost-cli/internal/store"
)

// newEngageCmd creates and configures the `engage` command.
func newEngageCmd() *cobra.Command {
	engageCmd := &cobra.Command{
		Use:   "engage [post URLs...]",
		Short: "Performs an engagement action on each post URL, rotating through saved accounts",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("engage.concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("engage.actions_per_minute", cmd.Flags().Lookup("rate")); err != nil {
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

			action := engage.Action(viper.GetString("action"))

			accountStore := store.New(appConfig.Store.Path, appConfig.Store.BackupPath, logger)
			accountsFile, err := accountStore.Load()
			if err != nil {
				return fmt.Errorf("could not load accounts: %w", err)
			}

			usable := make([]schemas.Session, 0, len(accountsFile.Accounts))
			for _, account := range accountsFile.Accounts {
				if account.HasUsableCookies() {
					usable = append(usable, account)
				}
			}
			if len(usable) == 0 {
				return fmt.Errorf("no usable accounts in %s; run `roost detect` first", appConfig.Store.Path)
			}

			manager := browser.NewManager(appConfig, logger)
			defer func() {
				if err := manager.Shutdown(context.Background()); err != nil {
					logger.Warn("Error during browser shutdown", zap.Error(err))
				}
			}()

			engager := engage.New(manager, appConfig.Engage, logger)
			results, err := engager.RunBatch(ctx, usable, args, action)
			if err != nil {
				return err
			}

			succeeded := 0
			for _, r := range results {
				if r.Err == nil {
					succeeded++
					continue
				}
				fmt.Printf("  FAILED %s as @%s: %v\n", r.URL, r.Username, r.Err)
			}
			fmt.Printf("\nEngagement complete: %d/%d %s action(s) succeeded across %d account(s).\n",
				succeeded, len(results), action, len(usable))
			return nil
		},
	}

	engageCmd.Flags().StringP("action", "a", "like", "Engagement action to perform ('like' or 'retweet').")
	engageCmd.Flags().IntP("concurrency", "j", 0, "Number of accounts acting in parallel. (Overrides config/env)")
	engageCmd.Flags().Int("rate", 0, "Actions per minute across the whole pool. (Overrides config/env)")

	return engageCmd
}
