package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all forge launcher configuration values.
type Config struct {
	// EntryName is the name of the packaged application binary the
	// launcher delegates to.
	EntryName string `toml:"entry_name"`

	ForgeDir string `toml:"forge_dir"`
	DataDir  string `toml:"data_dir"`

	// TempRoot is where frozen runs place their extraction directories.
	// Empty means the system temp directory.
	TempRoot string `toml:"temp_root"`

	// Stale extraction-directory cleanup. Crashed frozen runs leak their
	// extraction dirs; anything older than cleanup_max_age hours is
	// removed at startup.
	CleanupEnabled bool `toml:"cleanup_enabled"`
	CleanupMaxAge  int  `toml:"cleanup_max_age"`

	// Startup timeout for constructing the delegate — not TOML-configurable.
	BootstrapTimeout time.Duration `toml:"-"`
}

// DefaultConfig returns a Config with all defaults populated.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	forgeDir := filepath.Join(home, ".forge")

	return Config{
		EntryName:      "hathor-core",
		ForgeDir:       forgeDir,
		DataDir:        filepath.Join(forgeDir, "data"),
		TempRoot:       "",
		CleanupEnabled: true,
		CleanupMaxAge:  168, // 1 week in hours

		BootstrapTimeout: 30 * time.Second,
	}
}

// ConfigFilePath returns the path to the config file inside ForgeDir.
func (c Config) ConfigFilePath() string {
	return filepath.Join(c.ForgeDir, "config.toml")
}

// CleanupMaxAgeDuration returns the cleanup cutoff age as a Duration.
func (c Config) CleanupMaxAgeDuration() time.Duration {
	return time.Duration(c.CleanupMaxAge) * time.Hour
}

// Load loads configuration from the default location (~/.forge/config.toml),
// falling back to defaults if the file does not exist.
// Warnings are returned for unrecognized TOML keys (likely typos).
func Load() (Config, []string, error) {
	defaults := DefaultConfig()
	return LoadFrom(defaults.ConfigFilePath(), defaults)
}

// LoadFrom loads configuration from the given path, overlaying TOML values
// onto the provided defaults. If the file does not exist, defaults are
// returned without error (first-run case). If the file exists but is
// malformed, an error is returned. Warnings are returned for unrecognized
// TOML keys.
func LoadFrom(path string, defaults Config) (Config, []string, error) {
	cfg := defaults

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil, nil
		}
		return Config{}, nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	// If forge_dir was overridden but data_dir was not, re-derive it.
	if meta.IsDefined("forge_dir") && !meta.IsDefined("data_dir") {
		cfg.DataDir = filepath.Join(cfg.ForgeDir, "data")
	}

	// Restore non-TOML fields from defaults.
	cfg.BootstrapTimeout = defaults.BootstrapTimeout

	// Warn about unrecognized keys — likely typos.
	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown config key: %s", key))
	}

	return cfg, warnings, nil
}

// EnsureDirs creates ForgeDir and DataDir if they do not exist.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.ForgeDir, c.DataDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
