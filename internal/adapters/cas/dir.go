// Package cas stores JSON records in directories keyed by a hash of their name.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/zerr"
)

// recordDir is a directory of <sha256(name)>.json files.
type recordDir struct {
	path string
}

func (d recordDir) filename(name string) string {
	hash := sha256.Sum256([]byte(name))
	return filepath.Join(d.path, hex.EncodeToString(hash[:])+".json")
}

// read decodes the record for name into v. It reports false when there is none.
func (d recordDir) read(name string, v any, readErr, decodeErr error) (bool, error) {
	filename := d.filename(name)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(readErr, err.Error()), "path", filename)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, zerr.With(zerr.Wrap(decodeErr, err.Error()), "path", filename)
	}
	return true, nil
}

// write stores v as the record for name, replacing it atomically.
func (d recordDir) write(name string, v any, encodeErr, writeErr error) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return zerr.Wrap(encodeErr, err.Error())
	}

	if err := os.MkdirAll(d.path, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(writeErr, err.Error()), "path", d.path)
	}

	filename := d.filename(name)
	tmp, err := os.CreateTemp(d.path, ".record-*")
	if err != nil {
		return zerr.With(zerr.Wrap(writeErr, err.Error()), "path", filename)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(writeErr, err.Error()), "path", filename)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(writeErr, err.Error()), "path", filename)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.With(zerr.Wrap(writeErr, err.Error()), "path", filename)
	}
	return nil
}
