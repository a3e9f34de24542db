package domain

import "path"

// ManifestVersion is the current publish manifest format version.
const ManifestVersion = 1

// Manifest lists the published artifacts of a static build so a CDN or a
// page template can reference them by immutable, versioned paths.
type Manifest struct {
	Version int                      `json:"version"`
	Release string                   `json:"release,omitempty"`
	Assets  map[string]ManifestAsset `json:"assets"`
}

// ManifestAsset describes a single published artifact.
type ManifestAsset struct {
	Fingerprint   Fingerprint `json:"fingerprint"`
	Integrity     string      `json:"integrity"`
	ContentType   string      `json:"contentType"`
	VersionedPath string      `json:"versionedPath"`
}

// VersionedPath places an output path under a version segment. The version
// is the configured release when set, otherwise the artifact fingerprint.
func VersionedPath(output, release string, fp Fingerprint) string {
	version := release
	if version == "" {
		version = fp.String()
	}
	return path.Join(version, output)
}
