package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change a watcher observed.
type WatchOp uint8

// Watch operations.
const (
	OpCreate WatchOp = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the lower-case name of the operation.
func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is a single change below a watched directory.
type WatchEvent struct {
	// Path is absolute.
	Path      string
	Operation WatchOp
}

// Watcher reports changes to module sources while the dev server runs.
type Watcher interface {
	// Start watches every directory below the given roots.
	Start(ctx context.Context, roots ...string) error
	// Stop releases the underlying watches and ends the event stream.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
