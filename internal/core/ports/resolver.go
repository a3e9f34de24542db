package ports

import (
	"context"

	"go.trai.ch/spool/internal/core/domain"
)

// ModuleResolver turns module references into source units.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ModuleResolver interface {
	// Resolve returns the unit a reference points at. Equal normalized
	// references return the same unit for the lifetime of the resolver.
	Resolve(ctx context.Context, ref domain.ModuleRef) (*domain.SourceUnit, error)

	// Forget drops memoized units for the given local paths so the next
	// resolution reads them again.
	Forget(paths ...string)
}

// RemoteFetcher loads modules over HTTPS.
type RemoteFetcher interface {
	// Fetch returns the unit served at url. A non-empty integrity must match
	// the fetched content.
	Fetch(ctx context.Context, url, integrity string) (*domain.SourceUnit, error)
}

// RemoteStore persists fetched remote modules between runs.
type RemoteStore interface {
	// Load returns the stored record for url, or nil when there is none.
	Load(url string) (*domain.RemoteRecord, error)
	// Save stores a record.
	Save(rec *domain.RemoteRecord) error
}
