package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/ui"
)

// statusCmd reports session state and server reachability.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}

		fmt.Printf("server:  %s\n", app.cfg.Server)

		if !app.store.Authenticated() {
			fmt.Printf("session: %s not logged in\n", ui.SymbolPending)
			return nil
		}

		user, err := app.store.RefreshUser(context.Background())
		switch {
		case err == nil:
			fmt.Printf("session: %s logged in as %s\n", ui.SymbolSuccess, user.Username)
		case errors.IsAuth(err):
			app.store.Invalidate()
			fmt.Printf("session: %s expired, log in again\n", ui.SymbolFail)
		default:
			// Server unreachable; the saved session itself may be fine.
			fmt.Printf("session: %s saved, but the server is unreachable\n", ui.SymbolProgress)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
