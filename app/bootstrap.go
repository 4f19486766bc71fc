package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"forge/bundle"
	"forge/config"
	"forge/launcher"
	"forge/maintenance"

	"github.com/google/uuid"
)

// Bootstrap creates and wires all launcher dependencies.
// Each phase is separate for testability.
//
// Everything before the returned Application's Run is launcher-owned;
// after Run the process belongs to the delegate.
func Bootstrap(ctx context.Context, args []string) (*Application, error) {
	// 1. Load configuration
	cfg, warnings, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "forge: warning: %s\n", w)
	}

	// 2. Detect the ambient execution mode (frozen bundle vs. loose build).
	rt, err := launcher.DetectRuntime()
	if err != nil {
		return nil, fmt.Errorf("detecting runtime: %w", err)
	}

	// 3. Sweep extraction directories left behind by crashed frozen runs.
	// Best-effort: a failed sweep never blocks the launch.
	if cfg.CleanupEnabled {
		cleanupResult, err := maintenance.CleanupExtractDirs(maintenance.CleanupOptions{
			TempRoot: cfg.TempRoot,
			MaxAge:   cfg.CleanupMaxAgeDuration(),
			KeepDir:  rt.ExtractionDir,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "forge: warning: extraction cleanup failed: %v\n", err)
		} else {
			for _, e := range cleanupResult.Errors {
				fmt.Fprintf(os.Stderr, "forge: warning: cleanup: %s\n", e)
			}
			if cleanupResult.DeletedDirs > 0 {
				// Only log if something was actually deleted (reduce noise)
				fmt.Fprintf(os.Stderr, "forge: cleaned up %d stale extraction directories\n", cleanupResult.DeletedDirs)
			}
		}
	}

	// 4. Resolve the base directory for bundled resources. A frozen run
	// without an extraction directory is fatal here, before delegation.
	baseDir, err := launcher.ResolveBaseDir(rt)
	if err != nil {
		return nil, err
	}

	// 5. In frozen mode, the bundle manifest in the extraction directory
	// names the entry binary; loose builds fall back to the configured name.
	entryName, err := resolveEntryName(cfg, rt, baseDir)
	if err != nil {
		return nil, err
	}

	// 6. Locate the entry binary and build the delegate.
	binPath, err := launcher.FindEntryBinary(baseDir, entryName)
	if err != nil {
		return nil, fmt.Errorf("locating entry point: %w", err)
	}

	return &Application{
		Config:   cfg,
		Runtime:  rt,
		BaseDir:  baseDir,
		LaunchID: uuid.New().String(),
		Delegate: &launcher.Delegate{BinaryPath: binPath},
		Args:     args,
	}, nil
}

// loadConfig loads configuration from disk and ensures directories exist.
func loadConfig() (config.Config, []string, error) {
	cfg, warnings, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, warnings, nil
}

// resolveEntryName determines which binary the launcher delegates to.
// A frozen bundle carries its manifest; a malformed manifest means a broken
// bundle and is fatal. A missing manifest (or a loose build) falls back to
// the configured entry name.
func resolveEntryName(cfg config.Config, rt launcher.Runtime, baseDir string) (string, error) {
	if !rt.Frozen {
		return cfg.EntryName, nil
	}

	manifestPath := filepath.Join(baseDir, bundle.ManifestFileName)
	if _, err := os.Stat(manifestPath); err != nil {
		if os.IsNotExist(err) {
			return cfg.EntryName, nil
		}
		return "", fmt.Errorf("reading bundle manifest: %w", err)
	}

	m, warnings, err := bundle.ParseManifestFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("broken bundle: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "forge: warning: %s\n", w)
	}
	return m.Entry, nil
}
