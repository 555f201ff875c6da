package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "http://localhost:8000", cfg.Server)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 120, cfg.HistorySize)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	content := `version: 1
server: https://panel.example.com
refresh_interval: 2s
history_size: 30
output:
  color: never
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://panel.example.com", cfg.Server)
	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 30, cfg.HistorySize)
	assert.Equal(t, "never", cfg.Output.Color)

	// Unset keys fall back to defaults.
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://x:1"), 0o644))

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = Find(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFindCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("server: http://x:1"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found, err := Find("")
	require.NoError(t, err)
	// macOS resolves /tmp symlinks, compare basenames.
	assert.Equal(t, ConfigFileName, filepath.Base(found))
}

func TestLoadOrDefault(t *testing.T) {
	// No config anywhere: point HOME at an empty dir and cd into another.
	home := t.TempDir()
	t.Setenv("HOME", home)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty server", func(c *Config) { c.Server = "" }, true},
		{"bare hostname", func(c *Config) { c.Server = "panel.local" }, true},
		{"bad scheme", func(c *Config) { c.Server = "ftp://panel:21" }, true},
		{"https ok", func(c *Config) { c.Server = "https://panel:8443" }, false},
		{"interval too short", func(c *Config) { c.RefreshInterval = 100 * time.Millisecond }, true},
		{"zero interval allowed", func(c *Config) { c.RefreshInterval = 0 }, false},
		{"negative history", func(c *Config) { c.HistorySize = -1 }, true},
		{"unknown color mode", func(c *Config) { c.Output.Color = "rainbow" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := SessionPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, GlobalConfigDir, SessionFileName), path)

	// Dir() must have created the parent.
	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}
