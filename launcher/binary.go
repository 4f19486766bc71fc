package launcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindEntryBinary locates the packaged application binary under baseDir.
//
// Bundles in onedir layout keep the binary inside a directory of the same
// name, with its support files in _internal/ beside it:
//
//	<base>/<name>/<name>
//	<base>/<name>/_internal/...
//
// That layout is checked first, then the flat <base>/<name> path used by
// development trees.
func FindEntryBinary(baseDir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("entry binary name is empty")
	}

	onedir := filepath.Join(baseDir, name, name)
	if isRegularFile(onedir) {
		return onedir, nil
	}

	flat := filepath.Join(baseDir, name)
	if isRegularFile(flat) {
		return flat, nil
	}

	return "", fmt.Errorf("entry binary %q not found under %s (tried %s, %s)",
		name, baseDir, onedir, flat)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
