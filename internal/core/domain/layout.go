package domain

import "path/filepath"

const (
	// SpoolDirName is the name of the internal state directory.
	SpoolDirName = ".spool"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// RemoteDirName is the name of the remote module cache directory.
	RemoteDirName = "remote"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "spool.yaml"

	// LockFileName is the name of the remote integrity lockfile.
	LockFileName = "spool.lock"

	// ManifestFileName is the name of the publish manifest written to the output directory.
	ManifestFileName = "spool-manifest.json"

	// DefaultSourceDir is the source directory used when none is configured.
	DefaultSourceDir = "src"

	// DefaultOutputDir is the output directory used when none is configured.
	DefaultOutputDir = "dist"

	// NodeModulesDirName is the directory searched for package-style specifiers.
	NodeModulesDirName = "node_modules"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// OutputDirPerm is the permission for published output directories (rwxr-xr-x).
	OutputDirPerm = 0o755

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultSpoolPath returns the default root directory for spool metadata.
func DefaultSpoolPath() string {
	return SpoolDirName
}

// DefaultStorePath returns the default path for the build info store.
// It joins .spool and store.
func DefaultStorePath() string {
	return filepath.Join(SpoolDirName, StoreDirName)
}

// DefaultRemoteCachePath returns the default path for cached remote modules.
// It joins .spool, cache, and remote.
func DefaultRemoteCachePath() string {
	return filepath.Join(SpoolDirName, CacheDirName, RemoteDirName)
}
