package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/ui"
)

var systemYesFlag bool

// systemCmd groups host-level queries and power controls.
var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Host information and power controls",
	Long: `Query host details or issue power commands.

Power commands ask for confirmation unless --yes is given.

Examples:
  opsdeck system info
  opsdeck system restart
  opsdeck system shutdown --yes`,
}

// systemInfoCmd prints the detailed host report.
var systemInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show host details",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(); err != nil {
			return err
		}

		info, err := app.client.SystemInfo(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("hostname: %s\n", info.Hostname)
		fmt.Printf("os:       %s %s\n", info.OS.Name, info.OS.Version)
		fmt.Printf("kernel:   %s %s (%s)\n", info.Kernel.Name, info.Kernel.Release, info.Kernel.Machine)
		fmt.Printf("uptime:   %s\n", info.Uptime.Formatted)
		fmt.Printf("timezone: %s\n", info.Timezone)
		fmt.Printf("locale:   %s\n", info.Locale)
		return nil
	},
}

// systemRestartCmd reboots the host.
var systemRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Reboot the host",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPowerCommand("restart")
	},
}

// systemShutdownCmd powers the host off.
var systemShutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Power the host off",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPowerCommand("shutdown")
	},
}

func init() {
	rootCmd.AddCommand(systemCmd)
	systemCmd.AddCommand(systemInfoCmd)
	systemCmd.AddCommand(systemRestartCmd)
	systemCmd.AddCommand(systemShutdownCmd)
	systemCmd.PersistentFlags().BoolVarP(&systemYesFlag, "yes", "y", false, "Skip the confirmation prompt")
}

// runPowerCommand confirms and issues a restart or shutdown.
func runPowerCommand(action string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	if err := app.requireSession(); err != nil {
		return err
	}

	if !systemYesFlag {
		var confirmed bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Really %s the host?", action)).
					Description("Connected users and running services will be interrupted.").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read confirmation",
				"Use --yes to skip the prompt")
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	ctx := context.Background()
	var msgText, warning string
	switch action {
	case "restart":
		msg, err := app.client.RestartSystem(ctx)
		if err != nil {
			return err
		}
		msgText, warning = msg.Message, msg.Warning
	case "shutdown":
		msg, err := app.client.ShutdownSystem(ctx)
		if err != nil {
			return err
		}
		msgText, warning = msg.Message, msg.Warning
	}

	fmt.Printf("%s %s\n", ui.SymbolSuccess, msgText)
	if warning != "" {
		fmt.Printf("%s %s\n", ui.SymbolWarning, warning)
	}
	return nil
}
