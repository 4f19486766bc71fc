// Package bundle implements the launcher's own packaging format: a TOML
// manifest describing the payload of a frozen distribution, and extraction
// of that payload into a per-process directory.
package bundle

import (
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ManifestFileName is the manifest's file name inside a payload directory
// and inside every extraction directory.
const ManifestFileName = "bundle.manifest.toml"

// Manifest defines the on-disk schema of bundle.manifest.toml.
type Manifest struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description,omitempty"`

	// Entry is the name of the application binary inside the bundle.
	Entry string `toml:"entry"`

	Resources []Resource `toml:"resources"`
}

// Resource selects payload files by glob pattern. Patterns use forward
// slashes and support doublestar (**) matching.
type Resource struct {
	Include string `toml:"include"`
	Exclude string `toml:"exclude,omitempty"`

	// SHA256 is an optional hex digest, only valid when Include names a
	// single file (no glob metacharacters). Verified during extraction.
	SHA256 string `toml:"sha256,omitempty"`
}

// ParseManifestFile reads and parses a manifest from disk.
// Warnings are returned for unrecognized TOML keys.
func ParseManifestFile(manifestPath string) (Manifest, []string, error) {
	var m Manifest
	meta, err := toml.DecodeFile(manifestPath, &m)
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("loading manifest %s: %w", manifestPath, err)
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown manifest key: %s", key))
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, warnings, err
	}
	return m, warnings, nil
}

// Validate checks the manifest for structural errors. Errors name the
// offending field.
func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("manifest: version is required")
	}
	if m.Entry == "" {
		return fmt.Errorf("manifest: entry is required")
	}
	if strings.ContainsAny(m.Entry, `/\`) {
		return fmt.Errorf("manifest: entry %q must be a bare binary name", m.Entry)
	}
	if len(m.Resources) == 0 {
		return fmt.Errorf("manifest: at least one resource is required")
	}

	for i, r := range m.Resources {
		if r.Include == "" {
			return fmt.Errorf("manifest: resources[%d]: include is required", i)
		}
		if err := validatePattern(r.Include); err != nil {
			return fmt.Errorf("manifest: resources[%d]: include: %w", i, err)
		}
		if r.Exclude != "" {
			if err := validatePattern(r.Exclude); err != nil {
				return fmt.Errorf("manifest: resources[%d]: exclude: %w", i, err)
			}
		}
		if r.SHA256 != "" {
			if hasGlobMeta(r.Include) {
				return fmt.Errorf("manifest: resources[%d]: sha256 requires a literal include, got pattern %q", i, r.Include)
			}
			if len(r.SHA256) != 64 {
				return fmt.Errorf("manifest: resources[%d]: sha256 %q is not a hex sha-256 digest", i, r.SHA256)
			}
		}
	}
	return nil
}

// Matches reports whether the slash-separated relative path is selected by
// any resource (included and not excluded).
func (m Manifest) Matches(rel string) bool {
	for _, r := range m.Resources {
		if r.Matches(rel) {
			return true
		}
	}
	return false
}

// Matches reports whether the slash-separated relative path is selected by
// this resource.
func (r Resource) Matches(rel string) bool {
	ok, err := doublestar.Match(r.Include, rel)
	if err != nil || !ok {
		return false
	}
	if r.Exclude != "" {
		excluded, err := doublestar.Match(r.Exclude, rel)
		if err == nil && excluded {
			return false
		}
	}
	return true
}

// validatePattern rejects patterns that are malformed or that could reach
// outside the payload directory.
func validatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("malformed pattern %q", pattern)
	}
	if strings.Contains(pattern, `\`) {
		return fmt.Errorf("pattern %q must use forward slashes", pattern)
	}
	if path.IsAbs(pattern) {
		return fmt.Errorf("pattern %q must be relative", pattern)
	}
	for _, seg := range strings.Split(pattern, "/") {
		if seg == ".." {
			return fmt.Errorf("pattern %q must not escape the payload directory", pattern)
		}
	}
	return nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
