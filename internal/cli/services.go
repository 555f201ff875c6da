package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/dispatch"
	"github.com/opsdeck/opsdeck/internal/ui"
)

var servicesAllFlag bool

// servicesCmd lists units; subcommands run control actions.
var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List and control systemd services",
	Long: `List systemd services on the host, or control one with a subcommand.

By default only loaded units are shown; --all includes everything.

Examples:
  opsdeck services
  opsdeck services --all
  opsdeck services restart nginx
  opsdeck services stop apache2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(); err != nil {
			return err
		}

		services, err := app.client.Services(context.Background())
		if err != nil {
			return err
		}
		printServices(services, servicesAllFlag)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.Flags().BoolVarP(&servicesAllFlag, "all", "a", false, "Include units that are not loaded")

	for _, action := range []string{api.ActionStart, api.ActionStop, api.ActionRestart} {
		servicesCmd.AddCommand(newServiceActionCmd(action))
	}
}

// newServiceActionCmd builds one of the start/stop/restart subcommands.
func newServiceActionCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [service]",
		Short: capitalize(action) + " a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := app.requireSession(); err != nil {
				return err
			}
			return runServiceAction(app, args[0], action)
		},
	}
}

// runServiceAction drives one action through the dispatcher and reports
// the settled outcome plus the unit's state from the refreshed list.
func runServiceAction(app *app, service, action string) error {
	d := dispatch.NewDispatcher(app.client, app.log)
	defer d.Close()

	if err := d.Invoke(context.Background(), service, action); err != nil {
		return err
	}

	ev := <-d.Events()
	if ev.Err != nil {
		return ev.Err
	}

	fmt.Printf("%s %s %s completed\n", ui.SymbolSuccess, action, service)
	if ev.ListErr == nil {
		for _, s := range ev.Services {
			if s.Name == service {
				fmt.Printf("  state: %s (%s)\n", s.ActiveState, s.SubState)
				break
			}
		}
	}
	return nil
}

// capitalize uppercases the first letter for command summaries.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// printServices renders the unit table.
func printServices(services []api.Service, includeAll bool) {
	shown := make([]api.Service, 0, len(services))
	for _, s := range services {
		if !includeAll && s.LoadState != "loaded" {
			continue
		}
		shown = append(shown, s)
	}
	sort.Slice(shown, func(i, j int) bool { return shown[i].Name < shown[j].Name })

	fmt.Printf("%-32s %-10s %-12s %s\n", "UNIT", "ACTIVE", "SUB", "DESCRIPTION")
	for _, s := range shown {
		symbol := ui.ServiceStateSymbol(s.ActiveState)
		fmt.Printf("%-32s %s %-8s %-12s %s\n", s.Name, symbol, s.ActiveState, s.SubState, s.Description)
	}
	fmt.Printf("\n%d units\n", len(shown))
}
