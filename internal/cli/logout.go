package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd drops the saved session. Safe to run repeatedly.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}

		app.store.Logout()
		fmt.Println("✓ Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
