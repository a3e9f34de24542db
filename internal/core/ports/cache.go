package ports

import (
	"context"

	"go.trai.ch/spool/internal/core/domain"
)

// BuildFunc produces an asset result on a cache miss.
type BuildFunc func(ctx context.Context) (*domain.AssetResult, error)

// CacheStats is a snapshot of asset cache counters.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Builds uint64
	Size   int
}

// AssetCache stores asset results by fingerprint.
type AssetCache interface {
	// Get returns the cached result for fp.
	Get(fp domain.Fingerprint) (*domain.AssetResult, bool)
	// Put stores a result under its fingerprint.
	Put(result *domain.AssetResult)
	// Invalidate drops the result for fp.
	Invalidate(fp domain.Fingerprint)
	// GetOrBuild returns the cached result for fp or runs build, making sure
	// at most one build per fingerprint is in flight. The boolean reports a
	// cache hit.
	GetOrBuild(ctx context.Context, fp domain.Fingerprint, build BuildFunc) (*domain.AssetResult, bool, error)
	// Stats returns the current counters.
	Stats() CacheStats
}
