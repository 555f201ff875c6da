package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opsdeck/opsdeck/internal/errors"
)

var loginUsernameFlag string

// loginCmd authenticates against the management API and stores the
// session for later commands.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the management API",
	Long: `Authenticate against the management API and save the session.

Prompts for credentials interactively. When stdin is not a terminal the
password is read from stdin instead, for scripted use:

  echo "$PANEL_PASSWORD" | opsdeck login --username admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}

		username, password, err := collectCredentials()
		if err != nil {
			return err
		}

		user, err := app.store.Login(context.Background(), username, password)
		if err != nil {
			return err
		}

		if user != nil {
			fmt.Printf("✓ Logged in as %s\n", user.Username)
		} else {
			fmt.Println("✓ Logged in")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsernameFlag, "username", "u", "", "Username to sign in with")
}

// collectCredentials gathers username and password, interactively when
// possible and from stdin otherwise.
func collectCredentials() (string, string, error) {
	username := loginUsernameFlag
	var password string

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if username == "" {
			return "", "", errors.New(errors.ErrConfig,
				"Username required when reading the password from stdin",
				"Pass it with --username")
		}
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", errors.WrapWithCode(err, errors.ErrConfig,
				"Could not read password from stdin",
				"Pipe the password in, or run interactively")
		}
		return username, strings.TrimRight(line, "\r\n"), nil
	}

	var groups []*huh.Group
	if username == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("username is required")
					}
					return nil
				}),
		))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password),
	))

	if err := huh.NewForm(groups...).Run(); err != nil {
		return "", "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read credentials",
			"")
	}
	return username, password, nil
}
