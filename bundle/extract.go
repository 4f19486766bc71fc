package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ExtractPrefix is the name prefix of extraction directories created under
// the temp root. Stale-directory cleanup keys off the same prefix.
const ExtractPrefix = "forge-"

// ExtractOptions configures payload extraction.
type ExtractOptions struct {
	// PayloadDir is the directory holding the bundle payload and its
	// bundle.manifest.toml.
	PayloadDir string

	// TempRoot is where the extraction directory is created.
	// Empty means the system temp directory.
	TempRoot string
}

// ExtractResult describes a completed extraction.
type ExtractResult struct {
	// Dir is the freshly created extraction directory.
	Dir string

	// CopiedFiles counts payload files placed into Dir.
	CopiedFiles int

	// SkippedFiles counts payload files not selected by any resource.
	SkippedFiles int
}

// Extract copies the payload files selected by the manifest into a fresh
// per-process extraction directory named ExtractPrefix plus a UUID, and
// verifies declared digests. The manifest file itself is always copied so
// the frozen process can read it from the extraction directory.
//
// On any error the partially written directory is removed.
func Extract(m Manifest, opts ExtractOptions) (ExtractResult, error) {
	if err := m.Validate(); err != nil {
		return ExtractResult{}, err
	}
	if opts.PayloadDir == "" {
		return ExtractResult{}, fmt.Errorf("extract: payload directory is required")
	}
	tempRoot := opts.TempRoot
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}

	dir := filepath.Join(tempRoot, ExtractPrefix+uuid.New().String())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return ExtractResult{}, fmt.Errorf("creating extraction directory: %w", err)
	}

	result := ExtractResult{Dir: dir}
	digests := make(map[string]string)
	for _, r := range m.Resources {
		if r.SHA256 != "" {
			digests[r.Include] = r.SHA256
		}
	}

	err := filepath.WalkDir(opts.PayloadDir, func(srcPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(opts.PayloadDir, srcPath)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel != ManifestFileName && !m.Matches(rel) {
			result.SkippedFiles++
			return nil
		}

		sum, err := copyFile(srcPath, filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		if want, ok := digests[rel]; ok && sum != want {
			return fmt.Errorf("digest mismatch for %s: payload has %s, manifest declares %s", rel, sum, want)
		}
		result.CopiedFiles++
		return nil
	})
	if err != nil {
		os.RemoveAll(dir)
		return ExtractResult{}, fmt.Errorf("extracting payload: %w", err)
	}

	return result, nil
}

// copyFile copies src to dst, preserving the file mode, and returns the
// hex sha-256 of the copied content.
func copyFile(src, dst string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return "", err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", err
	}

	h := sha256.New()
	if _, err := io.Copy(out, io.TeeReader(in, h)); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
