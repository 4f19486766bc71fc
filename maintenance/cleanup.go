// Package maintenance removes extraction directories left behind by
// crashed frozen runs. A clean exit removes its own directory; a killed
// process cannot, so the next launch sweeps the temp root.
package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"forge/bundle"
)

// CleanupOptions configures stale extraction-directory cleanup.
type CleanupOptions struct {
	// TempRoot is the directory scanned for extraction dirs
	// (default: the system temp directory).
	TempRoot string

	// Prefix selects which directories are considered extraction dirs
	// (default: bundle.ExtractPrefix).
	Prefix string

	// MaxAge is the maximum age of extraction dirs to keep (default: 7 days).
	// Directories older than this will be deleted.
	MaxAge time.Duration

	// KeepDir is never deleted, regardless of age. The current process
	// passes its own extraction directory here.
	KeepDir string

	// DryRun when true will scan and report what would be deleted
	// without actually deleting.
	DryRun bool
}

// CleanupResult contains the results of a cleanup operation.
type CleanupResult struct {
	// DeletedDirs is the count of extraction directories deleted.
	DeletedDirs int

	// Errors is a list of non-fatal errors encountered during cleanup.
	// Fatal errors (temp root access failures) are returned as the
	// function error.
	Errors []string
}

// DefaultCleanupOptions returns cleanup options with sensible defaults.
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		TempRoot: os.TempDir(),
		Prefix:   bundle.ExtractPrefix,
		MaxAge:   7 * 24 * time.Hour,
		DryRun:   false,
	}
}

// CleanupExtractDirs deletes extraction directories older than the
// configured max age.
//
// Age is determined by directory ModTime. A live frozen process keeps its
// directory recent enough to survive any sane MaxAge, and the current
// process's own directory is excluded via KeepDir regardless.
//
// Error handling:
//   - Fatal errors (temp root access failures) are returned immediately
//   - Non-fatal errors (individual directory removal failures) are
//     collected in result.Errors
//   - A missing temp root is skipped gracefully
//
// The function is safe to call at any time and will not block for long.
func CleanupExtractDirs(opts CleanupOptions) (CleanupResult, error) {
	// Apply defaults if not set
	if opts.TempRoot == "" {
		opts.TempRoot = os.TempDir()
	}
	if opts.Prefix == "" {
		opts.Prefix = bundle.ExtractPrefix
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}

	result := CleanupResult{}
	cutoff := time.Now().Add(-opts.MaxAge)

	entries, err := os.ReadDir(opts.TempRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("read temp root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), opts.Prefix) {
			continue
		}

		path := filepath.Join(opts.TempRoot, entry.Name())
		if opts.KeepDir != "" && path == opts.KeepDir {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				// Directory removed between ReadDir and Info (race
				// with a concurrently exiting process).
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("stat %s: %v", path, err))
			continue
		}

		if info.ModTime().Before(cutoff) {
			if opts.DryRun {
				result.DeletedDirs++
				continue
			}

			if err := os.RemoveAll(path); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", path, err))
				continue
			}
			result.DeletedDirs++
		}
	}

	return result, nil
}
