// Package launcher decides how the forge binary is running (frozen bundle
// vs. loose development build), resolves the base directory for bundled
// resources, and hands control to the packaged application's entry point.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// frozen is stamped by the packaging build:
//
//	go build -ldflags "-X forge/launcher.frozen=1"
//
// Loose development builds leave it empty.
var frozen string

const (
	// EnvFrozen forces frozen-mode detection when set to "1". Packaging
	// wrappers use it to mark a bundled run without rebuilding.
	EnvFrozen = "FORGE_FROZEN"

	// EnvExtractDir is set by the packaging runtime in frozen mode and
	// points at the per-process extraction directory holding the
	// unpacked bundle.
	EnvExtractDir = "FORGE_EXTRACT_DIR"

	// EnvBundleDir is how the resolved base directory reaches a child
	// delegate process.
	EnvBundleDir = "FORGE_BUNDLE_DIR"
)

// Runtime is the ambient execution mode, captured once at startup so the
// rest of the launcher can stay pure and unit-testable.
type Runtime struct {
	// Frozen reports whether this process runs as a packaged bundle.
	Frozen bool

	// ExtractionDir is the packaging runtime's extraction directory.
	// Only meaningful when Frozen is true; empty means the environment
	// is broken (fatal, see ResolveBaseDir).
	ExtractionDir string

	// SelfPath is the absolute path of the launcher's own executable.
	SelfPath string
}

// DetectRuntime reads the ambient sources (build stamp, environment,
// executable path) into a Runtime value.
func DetectRuntime() (Runtime, error) {
	self, err := os.Executable()
	if err != nil {
		return Runtime{}, fmt.Errorf("locating own executable: %w", err)
	}
	self, err = filepath.Abs(self)
	if err != nil {
		return Runtime{}, fmt.Errorf("resolving executable path: %w", err)
	}

	rt := Runtime{SelfPath: self}
	if frozen == "1" || os.Getenv(EnvFrozen) == "1" {
		rt.Frozen = true
		rt.ExtractionDir = os.Getenv(EnvExtractDir)
	}
	return rt, nil
}
