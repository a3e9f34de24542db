package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/spool/internal/adapters/fs"
	"go.trai.ch/spool/internal/core/domain"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), domain.PrivateFilePerm); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".git/config":             "git config",
		"node_modules/x/index.js": "module.exports = 1",
		"dist/index.html":         "<p>old</p>",
		"pages/index.html.js":     "export default ''",
		"README.md":               "# Readme",
	})

	walker := fs.NewWalker()

	files := make(map[string]bool)
	for path, err := range walker.WalkFiles(tmpDir, []string{filepath.Join(tmpDir, "dist")}) {
		if err != nil {
			t.Fatal(err)
		}
		rel, err := filepath.Rel(tmpDir, path)
		if err != nil {
			t.Fatal(err)
		}
		files[filepath.ToSlash(rel)] = true
	}

	if files[".git/config"] {
		t.Error("expected .git/config to be skipped")
	}
	if files["node_modules/x/index.js"] {
		t.Error("expected node_modules to be skipped")
	}
	if files["dist/index.html"] {
		t.Error("expected the output directory to be skipped")
	}
	if !files["pages/index.html.js"] {
		t.Error("expected pages/index.html.js to be found")
	}
	if !files["README.md"] {
		t.Error("expected README.md to be found")
	}
}

func TestWalker_Discover(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html.js":         "",
		"a/index.html.js":       "",
		"style.css.js":          "",
		"_layout.html.js":       "",
		"_partials/nav.html.js": "",
		"lib/util.js":           "",
		"notes.txt":             "",
		"out/ignored.html.js":   "",
	})

	entries, err := fs.NewWalker().Discover(src, filepath.Join(src, "out"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a/index.html.js", "index.html.js", "style.css.js"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(entries), entries)
	}
	for i, e := range entries {
		if e.Source != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Source)
		}
	}
	if entries[0].Output != "a/index.html" || entries[0].Kind != domain.KindHTML {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestWalker_Discover_MissingSource(t *testing.T) {
	_, err := fs.NewWalker().Discover(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestWalker_Discover_UnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"a/index.html.js":     "",
		"locked/page.html.js": "",
		"z/index.html.js":     "",
	})
	locked := filepath.Join(src, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, domain.DirPerm) })

	entries, err := fs.NewWalker().Discover(src)
	if !errors.Is(err, domain.ErrDiscoveryFailed) {
		t.Fatalf("expected ErrDiscoveryFailed, got %v", err)
	}
	if entries != nil {
		t.Errorf("expected no partial entries, got %v", entries)
	}
}
