// Package build holds version information stamped into the spool binary.
package build

// Set by linker flags, e.g. -X go.trai.ch/spool/internal/build.Version=v1.2.0.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
