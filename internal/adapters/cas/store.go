package cas

import (
	"path/filepath"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
)

var _ ports.BuildInfoStore = (*Store)(nil)

// Store implements ports.BuildInfoStore with one file per entry.
type Store struct {
	dir recordDir
}

// NewStore creates a BuildInfoStore below the project root.
func NewStore(root string) *Store {
	return NewStoreWithPath(filepath.Join(root, domain.DefaultStorePath()))
}

// NewStoreWithPath creates a BuildInfoStore backed by the directory at path.
func NewStoreWithPath(path string) *Store {
	return &Store{dir: recordDir{path: path}}
}

// Get retrieves the build info for a given entry. It returns nil, nil when
// the entry was never built.
func (s *Store) Get(entry string) (*domain.BuildInfo, error) {
	var info domain.BuildInfo
	found, err := s.dir.read(entry, &info, domain.ErrStoreReadFailed, domain.ErrStoreUnmarshalFailed)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}

// Put stores the build info.
func (s *Store) Put(info domain.BuildInfo) error {
	return s.dir.write(info.Entry, info, domain.ErrStoreMarshalFailed, domain.ErrStoreWriteFailed)
}
