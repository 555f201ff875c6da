package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/opsdeck/opsdeck/internal/errors"
)

// MinRefreshInterval is the lowest accepted poll cadence; anything shorter
// hammers the management API for no visible benefit.
const MinRefreshInterval = 500 * time.Millisecond

// Validate checks that the config is usable.
func Validate(cfg *Config) error {
	if cfg.Server == "" {
		return errors.New(errors.ErrConfig,
			"No server URL configured",
			"Set 'server' in your config, or run 'opsdeck init'")
	}

	u, err := url.Parse(cfg.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid server URL", cfg.Server),
			"Use a full URL like http://panel.local:8000")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unsupported server scheme '%s'", u.Scheme),
			"The management API is served over http or https")
	}

	if cfg.RefreshInterval != 0 && cfg.RefreshInterval < MinRefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval %s is too short", cfg.RefreshInterval),
			"Minimum interval is 500ms to avoid overwhelming the host")
	}

	if cfg.HistorySize < 0 {
		return errors.New(errors.ErrConfig,
			"history_size cannot be negative",
			"Use a positive sample count, e.g. 120")
	}

	switch cfg.Output.Color {
	case "", "auto", "always", "never":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown color mode '%s'", cfg.Output.Color),
			"Use auto, always, or never")
	}

	return nil
}
