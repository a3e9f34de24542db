package cas

import (
	"path/filepath"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
)

var _ ports.RemoteStore = (*RemoteStore)(nil)

// RemoteStore implements ports.RemoteStore. Records are keyed by URL.
type RemoteStore struct {
	dir recordDir
}

// NewRemoteStore creates a remote module cache below the project root.
func NewRemoteStore(root string) *RemoteStore {
	return NewRemoteStoreWithPath(filepath.Join(root, domain.DefaultRemoteCachePath()))
}

// NewRemoteStoreWithPath creates a remote module cache at path.
func NewRemoteStoreWithPath(path string) *RemoteStore {
	return &RemoteStore{dir: recordDir{path: path}}
}

// Load returns the cached record for url or nil.
func (s *RemoteStore) Load(url string) (*domain.RemoteRecord, error) {
	var rec domain.RemoteRecord
	found, err := s.dir.read(url, &rec, domain.ErrRemoteCacheFailed, domain.ErrRemoteCacheFailed)
	if err != nil || !found {
		return nil, err
	}
	if rec.URL != url {
		return nil, nil
	}
	return &rec, nil
}

// Save stores rec under its URL.
func (s *RemoteStore) Save(rec *domain.RemoteRecord) error {
	return s.dir.write(rec.URL, rec, domain.ErrRemoteCacheFailed, domain.ErrRemoteCacheFailed)
}
