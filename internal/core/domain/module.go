package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// Origin tells where a source unit was loaded from.
type Origin uint8

const (
	// OriginLocal marks a unit read from the local filesystem.
	OriginLocal Origin = iota
	// OriginRemote marks a unit fetched over HTTPS.
	OriginRemote
)

// String returns the lower-case name of the origin.
func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// ModuleRef is a request to resolve a specifier as seen from an importer.
// Base is the importer's location (absolute path or URL); an empty Base
// means the project source root.
type ModuleRef struct {
	Specifier string
	Base      string
}

// Fingerprint is the deterministic identity of a module together with its
// transitive dependencies.
type Fingerprint string

// IsZero reports whether the fingerprint is empty.
func (f Fingerprint) IsZero() bool {
	return f == ""
}

// Short returns the first eight characters of the fingerprint.
func (f Fingerprint) Short() string {
	if len(f) <= 8 {
		return string(f)
	}
	return string(f[:8])
}

// String returns the fingerprint as a string.
func (f Fingerprint) String() string {
	return string(f)
}

// SourceUnit is a resolved module. Units are immutable once created: new
// content produces a new unit with a new content hash.
type SourceUnit struct {
	// ID is the canonical location: an absolute file path or an https URL.
	ID string
	// Name is the display name, relative to the source root for local units.
	Name string
	// Origin tells whether the unit was read locally or fetched.
	Origin Origin
	// Content is the module source text.
	Content string
	// ContentHash is the hash of Content.
	ContentHash string
	// Imports lists the static import specifiers in source order.
	Imports []string
	// Kind is the asset kind when the unit is an asset module.
	Kind AssetKind
	// Asset reports whether the unit follows the asset naming rule.
	Asset bool
}

// IsRemote reports whether the unit was fetched over the network.
func (u *SourceUnit) IsRemote() bool {
	return u.Origin == OriginRemote
}

// Dir returns the location that relative imports of the unit resolve against.
func (u *SourceUnit) Dir() string {
	if u.IsRemote() {
		idx := strings.LastIndex(u.ID, "/")
		if idx < 0 {
			return u.ID
		}
		return u.ID[:idx+1]
	}
	return filepath.Dir(u.ID)
}

// BaseName returns the last path element of the unit's location.
func (u *SourceUnit) BaseName() string {
	if u.IsRemote() {
		return path.Base(u.ID)
	}
	return filepath.Base(u.ID)
}

// Import is a pre-satisfied import handed to the execution sandbox.
// Exactly one of Asset or Unit is set.
type Import struct {
	// Asset is the rendered result of an imported asset module.
	Asset *AssetResult
	// Unit is an imported library module, evaluated inside the importer's runtime.
	Unit *SourceUnit
	// Imports are the resolved imports of Unit, keyed by specifier.
	Imports map[string]Import
}
