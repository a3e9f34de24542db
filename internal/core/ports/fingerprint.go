package ports

import "go.trai.ch/spool/internal/core/domain"

// Fingerprinter computes content hashes and fingerprints and remembers the
// last fingerprint seen for every module identity.
type Fingerprinter interface {
	// ContentHash returns the hash of module content.
	ContentHash(content []byte) string
	// Fingerprint derives the identity of unit rendered as kind from its
	// content and the fingerprints of its direct dependencies, in import order.
	Fingerprint(kind domain.AssetKind, unit *domain.SourceUnit, deps []domain.Fingerprint) domain.Fingerprint
	// Record stores fp as the latest fingerprint of id and returns the
	// previous one and whether it changed.
	Record(id string, fp domain.Fingerprint) (domain.Fingerprint, bool)
	// Lookup returns the latest fingerprint recorded for id.
	Lookup(id string) (domain.Fingerprint, bool)
	// OutputHash hashes an artifact already written to disk.
	OutputHash(path string) (string, error)
}
