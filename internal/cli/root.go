// Package cli implements the opsdeck command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/dashboard"
)

// Global flags
var (
	configFlag string
	serverFlag string
)

// rootCmd is the base command. Running opsdeck with no arguments opens
// the dashboard.
var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "Terminal control panel for a Linux host",
	Long: `opsdeck is a terminal control panel for a Linux host running the
management API. It shows live CPU, memory, and disk telemetry, lets you
start, stop, and restart systemd services, and exposes host power
controls.

Run without arguments to open the interactive dashboard.

Examples:
  opsdeck login
  opsdeck
  opsdeck services
  opsdeck services restart nginx
  opsdeck system info`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		return dashboard.Run(app.cfg, app.store, app.client, app.log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Management API base URL (overrides config)")
}

// Execute runs the root command and prints structured errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Config loads the effective configuration for the current invocation.
func Config() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
