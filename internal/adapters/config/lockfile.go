package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// LockfilePath returns the location of the lockfile for a project.
func LockfilePath(p *domain.Project) string {
	return filepath.Join(p.Root, domain.LockFileName)
}

// ReadLockfile reads the lockfile at path. A missing file yields an empty lockfile.
func ReadLockfile(path string) (*domain.Lockfile, error) {
	// #nosec G304 -- path is derived from the project root
	data, err := os.ReadFile(path)
	if isNotExist(err) {
		return domain.NewLockfile(), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}

	lock := domain.NewLockfile()
	if err := yaml.Unmarshal(data, lock); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}
	if lock.Version > domain.LockfileVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockfileFailed, "lockfile was written by a newer spool"), "version", lock.Version)
	}
	if lock.Remotes == nil {
		lock.Remotes = make(map[string]domain.LockedRemote)
	}
	return lock, nil
}

// WriteLockfile replaces the lockfile at path. Map keys are written sorted so
// the file diffs cleanly.
func WriteLockfile(path string, lock *domain.Lockfile) error {
	lock.Version = domain.LockfileVersion
	data, err := yaml.Marshal(lock)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+domain.LockFileName+"-*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockfileFailed, err.Error()), "path", path)
	}
	return nil
}
