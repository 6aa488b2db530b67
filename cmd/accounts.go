package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hcastellani/roost-cli/internal/detector"
	"github.com/hcastellani/roost-cli/internal/observability"
	"github.com/hcastellani/roost-cli/internal/store"
)

// newAccountsCmd creates and configures the `accounts` command.
func newAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Lists the accounts in the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			d := detector.New(appConfig, logger)
			accounts, err := d.LoadAccounts()
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					fmt.Printf("No account file at %s. Run `roost detect` first.\n", appConfig.Store.Path)
					return nil
				}
				return err
			}

			fmt.Printf("%d account(s) in %s", accounts.TotalAccounts, appConfig.Store.Path)
			if !accounts.LastDetection.IsZero() {
				fmt.Printf(" (last detection %s)", accounts.LastDetection.Format("2006-01-02 15:04:05 MST"))
			}
			fmt.Println()

			for _, s := range accounts.Accounts {
				status := "unvalidated"
				if s.Validated {
					status = "validated"
				}
				fmt.Printf("  @%s (%s) cookies=%d %s\n",
					s.Username, s.Name, len(s.Cookies), status)
			}
			return nil
		},
	}
}
