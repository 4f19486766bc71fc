package launcher

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrExtractionDirMissing reports a frozen run whose packaging runtime did
// not provide an extraction directory. There is no local recovery; the
// launcher must exit non-zero before any delegation.
var ErrExtractionDirMissing = errors.New("extraction directory unavailable")

// ResolveBaseDir computes the directory that anchors bundled resource
// lookups for this process.
//
// Frozen: the packaging runtime's extraction directory, returned exactly as
// provided. Not frozen: the absolute directory containing the launcher's
// own executable, independent of the current working directory.
//
// The result is always an absolute path, valid for the process lifetime.
// ResolveBaseDir has no side effects.
func ResolveBaseDir(rt Runtime) (string, error) {
	if rt.Frozen {
		if rt.ExtractionDir == "" {
			return "", fmt.Errorf("%w: frozen run but %s is not set", ErrExtractionDirMissing, EnvExtractDir)
		}
		if !filepath.IsAbs(rt.ExtractionDir) {
			return "", fmt.Errorf("%w: %q is not absolute", ErrExtractionDirMissing, rt.ExtractionDir)
		}
		return rt.ExtractionDir, nil
	}

	if rt.SelfPath == "" {
		return "", errors.New("launcher location unknown")
	}
	abs, err := filepath.Abs(rt.SelfPath)
	if err != nil {
		return "", fmt.Errorf("resolving launcher location: %w", err)
	}
	return filepath.Dir(abs), nil
}
