package ports

import "go.trai.ch/spool/internal/core/domain"

// BuildInfoStore defines the interface for storing and retrieving build information.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the build info for a given entry.
	// Returns nil, nil if not found.
	Get(entry string) (*domain.BuildInfo, error)

	// Put stores the build info.
	Put(info domain.BuildInfo) error
}

// ArtifactWriter publishes rendered assets.
type ArtifactWriter interface {
	// WriteArtifact atomically writes data to rel below dir and returns the absolute path.
	WriteArtifact(dir, rel string, data []byte) (string, error)
}
