package fs

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes xxhash based content hashes and fingerprints and keeps the
// last fingerprint observed for each module.
type Hasher struct {
	mu     sync.Mutex
	latest map[string]domain.Fingerprint
}

// NewHasher creates a new Hasher with an empty fingerprint record.
func NewHasher() *Hasher {
	return &Hasher{latest: make(map[string]domain.Fingerprint)}
}

// ContentHash returns the hex xxhash of content.
func (h *Hasher) ContentHash(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Fingerprint hashes kind, the unit's content hash and the direct dependency
// fingerprints in import order.
func (h *Hasher) Fingerprint(kind domain.AssetKind, unit *domain.SourceUnit, deps []domain.Fingerprint) domain.Fingerprint {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(kind.String())
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(unit.ContentHash)
	_, _ = hasher.Write([]byte{0})

	for _, dep := range deps {
		_, _ = hasher.WriteString(dep.String())
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	return domain.Fingerprint(fmt.Sprintf("%016x", hasher.Sum64()))
}

// Record stores fp as the latest fingerprint of id.
func (h *Hasher) Record(id string, fp domain.Fingerprint) (domain.Fingerprint, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, ok := h.latest[id]
	h.latest[id] = fp
	return prev, ok && prev != fp
}

// Lookup returns the latest fingerprint recorded for id.
func (h *Hasher) Lookup(id string) (domain.Fingerprint, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fp, ok := h.latest[id]
	return fp, ok
}

// OutputHash computes the XXHash of a written artifact.
func (h *Hasher) OutputHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrOutputHashFailed, err.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrOutputHashFailed, err.Error()), "path", path)
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
