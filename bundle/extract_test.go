package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writePayload builds a payload tree from rel-path -> content.
func writePayload(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestExtract(t *testing.T) {
	payload := writePayload(t, map[string]string{
		ManifestFileName:           "name = \"x\"\n",
		"hathor-core/hathor-core":  "binary",
		"hathor-core/_internal/py": "lib",
		"data/genesis.json":        "{}",
		"README.md":                "not bundled",
	})
	tempRoot := t.TempDir()

	m := Manifest{
		Name:    "hathor-core",
		Version: "0.59.0",
		Entry:   "hathor-core",
		Resources: []Resource{
			{Include: "hathor-core/**"},
			{Include: "data/*.json"},
		},
	}

	result, err := Extract(m, ExtractOptions{PayloadDir: payload, TempRoot: tempRoot})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if filepath.Dir(result.Dir) != tempRoot {
		t.Errorf("extraction dir %q not under temp root %q", result.Dir, tempRoot)
	}
	if !strings.HasPrefix(filepath.Base(result.Dir), ExtractPrefix) {
		t.Errorf("extraction dir %q lacks prefix %q", result.Dir, ExtractPrefix)
	}

	// Manifest plus three selected files; README skipped.
	if result.CopiedFiles != 4 {
		t.Errorf("CopiedFiles = %d, want 4", result.CopiedFiles)
	}
	if result.SkippedFiles != 1 {
		t.Errorf("SkippedFiles = %d, want 1", result.SkippedFiles)
	}

	for _, rel := range []string{
		ManifestFileName,
		"hathor-core/hathor-core",
		"hathor-core/_internal/py",
		"data/genesis.json",
	} {
		if _, err := os.Stat(filepath.Join(result.Dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s in extraction dir: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(result.Dir, "README.md")); !os.IsNotExist(err) {
		t.Error("README.md should not be extracted")
	}
}

func TestExtractUniqueDirs(t *testing.T) {
	payload := writePayload(t, map[string]string{"app/app": "bin"})
	tempRoot := t.TempDir()

	m := Manifest{
		Name: "app", Version: "1", Entry: "app",
		Resources: []Resource{{Include: "app/**"}},
	}

	a, err := Extract(m, ExtractOptions{PayloadDir: payload, TempRoot: tempRoot})
	if err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}
	b, err := Extract(m, ExtractOptions{PayloadDir: payload, TempRoot: tempRoot})
	if err != nil {
		t.Fatalf("second Extract failed: %v", err)
	}
	if a.Dir == b.Dir {
		t.Errorf("two extractions shared a directory: %s", a.Dir)
	}
}

func TestExtractVerifiesDigest(t *testing.T) {
	content := "genesis block"
	sum := sha256.Sum256([]byte(content))

	payload := writePayload(t, map[string]string{"data/genesis.json": content})
	m := Manifest{
		Name: "app", Version: "1", Entry: "app",
		Resources: []Resource{
			{Include: "data/genesis.json", SHA256: hex.EncodeToString(sum[:])},
		},
	}

	if _, err := Extract(m, ExtractOptions{PayloadDir: payload, TempRoot: t.TempDir()}); err != nil {
		t.Fatalf("Extract rejected matching digest: %v", err)
	}
}

func TestExtractDigestMismatch(t *testing.T) {
	payload := writePayload(t, map[string]string{"data/genesis.json": "tampered"})
	tempRoot := t.TempDir()
	m := Manifest{
		Name: "app", Version: "1", Entry: "app",
		Resources: []Resource{
			{Include: "data/genesis.json", SHA256: strings.Repeat("0", 64)},
		},
	}

	_, err := Extract(m, ExtractOptions{PayloadDir: payload, TempRoot: tempRoot})
	if err == nil {
		t.Fatal("Extract accepted mismatched digest")
	}

	// The partial extraction dir must be removed on failure.
	entries, readErr := os.ReadDir(tempRoot)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty temp root after failed extraction, found %d entries", len(entries))
	}
}

func TestExtractInvalidManifest(t *testing.T) {
	if _, err := Extract(Manifest{}, ExtractOptions{PayloadDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for invalid manifest")
	}
}
