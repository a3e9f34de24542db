package fs

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactWriter = (*Writer)(nil)

// Writer publishes artifacts by writing a temporary file next to the target
// and renaming it into place, so readers never see partial output.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteArtifact writes data to rel below dir. rel must stay inside dir.
func (w *Writer) WriteArtifact(dir, rel string, data []byte) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if relTarget, err := filepath.Rel(dir, target); err != nil || relTarget == ".." ||
		strings.HasPrefix(relTarget, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrPathOutsideRoot, "refusing to write artifact"), "path", rel)
	}

	fail := func(err error) (string, error) {
		return "", zerr.With(zerr.Wrap(domain.ErrOutputWriteFailed, err.Error()), "path", target)
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.OutputDirPerm); err != nil {
		return fail(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*")
	if err != nil {
		return fail(err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fail(err)
	}
	return target, nil
}
