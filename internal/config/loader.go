package config

import (
	"os"
	"path/filepath"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".opsdeck.yaml"
	// GlobalConfigDir is the directory for global config, under $HOME.
	GlobalConfigDir = ".config/opsdeck"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// SessionFileName holds the persisted session record, next to the global config.
	SessionFileName = "session.json"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'opsdeck init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v)
}

// parseConfig applies defaults and extracts typed values from viper.
func parseConfig(v *viper.Viper) (*Config, error) {
	defaults := DefaultConfig()

	v.SetDefault("version", defaults.Version)
	v.SetDefault("server", defaults.Server)
	v.SetDefault("refresh_interval", defaults.RefreshInterval)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("history_size", defaults.HistorySize)
	v.SetDefault("output.color", defaults.Output.Color)

	cfg := &Config{
		Version:         v.GetInt("version"),
		Server:          v.GetString("server"),
		RefreshInterval: v.GetDuration("refresh_interval"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		HistorySize:     v.GetInt("history_size"),
		Output: OutputConfig{
			Color: v.GetString("output.color"),
		},
	}

	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .opsdeck.yaml in the current directory
// 3. ~/.config/opsdeck/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Global config
	if home, err := os.UserHomeDir(); err == nil {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if
// no config file exists. Commands that must work before 'opsdeck init'
// (init itself, version) use this.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Dir returns the global opsdeck state directory (~/.config/opsdeck),
// creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set $HOME and try again")
	}
	dir := filepath.Join(home, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create state directory: "+dir,
			"Check directory permissions")
	}
	return dir, nil
}

// SessionPath returns the path of the persisted session record.
func SessionPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SessionFileName), nil
}
