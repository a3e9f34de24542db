package domain

import "go.trai.ch/zerr"

var (
	// ErrNotFound is returned when a module specifier does not point at an existing source.
	ErrNotFound = zerr.New("module not found")

	// ErrInvalidSpecifier is returned when a module specifier cannot be interpreted.
	ErrInvalidSpecifier = zerr.New("invalid module specifier")

	// ErrInsecureScheme is returned when a remote module is requested over plain http.
	ErrInsecureScheme = zerr.New("insecure scheme, only https is allowed")

	// ErrIntegrityMismatch is returned when fetched content does not match its expected digest.
	ErrIntegrityMismatch = zerr.New("integrity mismatch")

	// ErrInvalidIntegrity is returned when an integrity string is malformed or uses an unknown algorithm.
	ErrInvalidIntegrity = zerr.New("invalid integrity string")

	// ErrUnreachable is returned when a remote host cannot be reached after all retries.
	ErrUnreachable = zerr.New("remote module unreachable")

	// ErrHTTPStatus is returned when a remote host answers with a non-success status.
	ErrHTTPStatus = zerr.New("unexpected http status")

	// ErrThrown is returned when a module throws or rejects during execution.
	ErrThrown = zerr.New("module threw during execution")

	// ErrInvalidExport is returned when a module's default export is not text.
	ErrInvalidExport = zerr.New("module default export is not text")

	// ErrExecTimeout is returned when a module exceeds its execution budget.
	ErrExecTimeout = zerr.New("module execution timed out")

	// ErrCycleDetected is returned when a cycle is detected in the module dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnitAlreadyExists is returned when a module is added to a graph twice.
	ErrUnitAlreadyExists = zerr.New("module already exists in graph")

	// ErrMissingDependency is returned when an edge references a module that is not in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrNotAnEntry is returned when a path does not follow the <name>.<ext>.js naming rule.
	ErrNotAnEntry = zerr.New("path is not an asset module")

	// ErrDiscoveryFailed is returned when the source tree cannot be walked completely.
	ErrDiscoveryFailed = zerr.New("failed to discover asset modules")

	// ErrNoEntries is returned when a static build discovers nothing to build.
	ErrNoEntries = zerr.New("no asset modules found")

	// ErrPathOutsideRoot is returned when a resolved path escapes its root directory.
	ErrPathOutsideRoot = zerr.New("path is outside of root")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrRemoteCacheFailed is returned when the on-disk remote module cache cannot be used.
	ErrRemoteCacheFailed = zerr.New("failed to access remote module cache")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when a config value is out of range.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrLockfileFailed is returned when the lockfile cannot be read or written.
	ErrLockfileFailed = zerr.New("failed to access lockfile")

	// ErrOutputWriteFailed is returned when an artifact cannot be written to the output directory.
	ErrOutputWriteFailed = zerr.New("failed to write output")

	// ErrOutputHashFailed is returned when hashing a written artifact fails.
	ErrOutputHashFailed = zerr.New("failed to compute output hash")

	// ErrBuildExecutionFailed is returned when at least one entry of a static build fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrEntryFailed is returned for a single failed entry of a static build.
	ErrEntryFailed = zerr.New("entry failed")

	// ErrBuildAborted is returned when an asset build panicked or never returned.
	ErrBuildAborted = zerr.New("asset build aborted")

	// ErrWatcherFailed is returned when the development file watcher cannot start.
	ErrWatcherFailed = zerr.New("failed to start file watcher")
)
