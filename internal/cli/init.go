package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/errors"
)

var (
	initForceFlag bool
	initLocalFlag bool
)

// initCmd creates a config file, interactively unless --server was given.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an opsdeck config file",
	Long: `Create a config file with the server URL and refresh settings.

Writes the global config (~/.config/opsdeck/config.yaml) by default;
use --local for a .opsdeck.yaml in the current directory.

Examples:
  opsdeck init
  opsdeck init --server http://panel.local:8000
  opsdeck init --local --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initLocalFlag, "local", false, "Write .opsdeck.yaml in the current directory")
}

func runInit() error {
	path, err := initTargetPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !initForceFlag {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", path),
			"Use --force to overwrite")
	}

	cfg := config.DefaultConfig()
	if serverFlag != "" {
		cfg.Server = serverFlag
	} else {
		if err := promptInitValues(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := writeConfig(path, cfg); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote %s\n", path)
	fmt.Println("\nNext: opsdeck login")
	return nil
}

// initTargetPath decides where the config file goes.
func initTargetPath() (string, error) {
	if initLocalFlag {
		return filepath.Join(".", config.ConfigFileName), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.GlobalConfigFile), nil
}

// promptInitValues fills the config from an interactive form.
func promptInitValues(cfg *config.Config) error {
	server := cfg.Server
	interval := cfg.RefreshInterval.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Base URL of the management API").
				Placeholder("http://panel.local:8000").
				Value(&server).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || u.Scheme == "" || u.Host == "" {
						return fmt.Errorf("enter a full URL like http://panel.local:8000")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh interval").
				Description("How often the dashboard polls for telemetry").
				Placeholder("5s").
				Value(&interval).
				Validate(func(s string) error {
					if _, err := time.ParseDuration(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("enter a duration like 5s or 2500ms")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config values",
			"Pass --server to skip the prompts")
	}

	cfg.Server = strings.TrimSpace(server)
	cfg.RefreshInterval, _ = time.ParseDuration(strings.TrimSpace(interval))
	return nil
}

// fileConfig mirrors config.Config with human-readable durations, so
// the generated YAML says "5s" rather than nanosecond counts.
type fileConfig struct {
	Version         int    `yaml:"version"`
	Server          string `yaml:"server"`
	RefreshInterval string `yaml:"refresh_interval"`
	RequestTimeout  string `yaml:"request_timeout"`
	HistorySize     int    `yaml:"history_size"`
	Output          struct {
		Color string `yaml:"color"`
	} `yaml:"output"`
}

// writeConfig marshals the config with a short header comment.
func writeConfig(path string, cfg *config.Config) error {
	out := fileConfig{
		Version:         cfg.Version,
		Server:          cfg.Server,
		RefreshInterval: cfg.RefreshInterval.String(),
		RequestTimeout:  cfg.RequestTimeout.String(),
		HistorySize:     cfg.HistorySize,
	}
	out.Output.Color = cfg.Output.Color

	data, err := yaml.Marshal(out)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize config",
			"")
	}

	header := "# opsdeck configuration\n# Generated by 'opsdeck init'\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}
