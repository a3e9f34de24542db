package domain

// LockfileVersion is the current lockfile format version.
const LockfileVersion = 1

// Lockfile pins the integrity of every remote module a project has fetched,
// so later builds fail loudly when a remote changes under the same URL.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int `yaml:"version"`

	// Remotes maps remote module URLs to their pinned state.
	Remotes map[string]LockedRemote `yaml:"remotes"`
}

// LockedRemote is the pinned state of one remote module.
type LockedRemote struct {
	Integrity string `yaml:"integrity"`
}

// NewLockfile returns an empty lockfile of the current version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version: LockfileVersion,
		Remotes: make(map[string]LockedRemote),
	}
}

// Integrity returns the pinned integrity of url.
func (l *Lockfile) Integrity(url string) (string, bool) {
	r, ok := l.Remotes[url]
	if !ok || r.Integrity == "" {
		return "", false
	}
	return r.Integrity, true
}

// Pin records the integrity of url and reports whether the lockfile changed.
func (l *Lockfile) Pin(url, integrity string) bool {
	if l.Remotes == nil {
		l.Remotes = make(map[string]LockedRemote)
	}
	if r, ok := l.Remotes[url]; ok && r.Integrity == integrity {
		return false
	}
	l.Remotes[url] = LockedRemote{Integrity: integrity}
	return true
}
