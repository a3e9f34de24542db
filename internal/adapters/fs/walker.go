// Package fs provides file system adapters for discovering, hashing and
// writing asset modules.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker discovers files below a root.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the paths of all files below root, skipping VCS and
// dependency directories and any directory listed in skipDirs (absolute paths).
// A directory that cannot be read ends the walk with its error.
func (w *Walker) WalkFiles(root string, skipDirs []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				yield(path, err)
				return filepath.SkipAll
			}
			if d.IsDir() {
				if path != root && w.skipDir(path, d.Name(), skipDirs) {
					return filepath.SkipDir
				}
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skipDir(path, name string, skipDirs []string) bool {
	switch name {
	case ".git", ".jj", domain.NodeModulesDirName, domain.SpoolDirName:
		return true
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains(skipDirs, path)
}

// Discover returns the asset modules below sourceDir sorted by source path.
// skipDirs are absolute directories to leave out, typically the output directory.
func (w *Walker) Discover(sourceDir string, skipDirs ...string) ([]domain.Entry, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrNoEntries, "source directory does not exist"), "source", sourceDir)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat source directory"), "source", sourceDir)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoEntries, "source is not a directory"), "source", sourceDir)
	}

	var entries []domain.Entry
	for path, err := range w.WalkFiles(sourceDir, skipDirs) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrDiscoveryFailed, err.Error()), "path", path)
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			continue
		}
		if entry, ok := domain.ParseEntry(rel); ok {
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b domain.Entry) int {
		return strings.Compare(a.Source, b.Source)
	})
	return entries, nil
}
