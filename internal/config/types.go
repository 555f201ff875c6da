package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete opsdeck configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Server is the base URL of the management API, e.g. "http://panel:8000".
	Server string `yaml:"server" mapstructure:"server"`

	// RefreshInterval is the telemetry poll cadence for the dashboard.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// RequestTimeout bounds every individual API request.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	// HistorySize is the number of samples kept client-side for sparklines.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		Server:          "http://localhost:8000",
		RefreshInterval: 5 * time.Second,
		RequestTimeout:  10 * time.Second,
		HistorySize:     120,
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
