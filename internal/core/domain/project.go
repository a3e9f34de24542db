package domain

import "time"

// Project is the resolved configuration of a spool project.
// All directories are absolute.
type Project struct {
	Root       string
	ConfigPath string
	SourceDir  string
	OutputDir  string

	Release     string
	Concurrency int
	Lock        bool

	CacheCapacity int
	ExecTimeout   time.Duration

	FetchTimeout   time.Duration
	FetchAttempts  int
	FetchBaseDelay time.Duration

	ServeAddr string
	Watch     bool

	Manifest  bool
	Versioned bool

	// ImportMap maps bare specifiers (or prefixes ending in "/") to replacements.
	ImportMap map[string]string
	// Integrity pins expected digests of remote module URLs.
	Integrity map[string]string
}
