package domain

import (
	"slices"
	"strings"
	"time"
)

// EntryStatus is the outcome of one entry in a static build.
type EntryStatus string

const (
	// StatusSuccess marks an entry whose artifact was written or reused.
	StatusSuccess EntryStatus = "success"
	// StatusFailed marks an entry that could not be built.
	StatusFailed EntryStatus = "failed"
)

// EntryReport describes what happened to a single entry.
type EntryReport struct {
	EntryPath   string        `json:"entryPath"`
	OutputPath  string        `json:"outputPath,omitempty"`
	Kind        AssetKind     `json:"kind,omitempty"`
	Status      EntryStatus   `json:"status"`
	ErrorKind   string        `json:"errorKind,omitempty"`
	Cause       string        `json:"cause,omitempty"`
	Fingerprint Fingerprint   `json:"fingerprint,omitempty"`
	Cached      bool          `json:"cached,omitempty"`
	Duration    time.Duration `json:"-"`
}

// BuildReport is the result of a static build over all discovered entries.
type BuildReport struct {
	Entries  []EntryReport `json:"entries"`
	Duration time.Duration `json:"-"`
}

// Add appends an entry report.
func (r *BuildReport) Add(e EntryReport) {
	r.Entries = append(r.Entries, e)
}

// Sort orders entries by entry path.
func (r *BuildReport) Sort() {
	slices.SortFunc(r.Entries, func(a, b EntryReport) int {
		return strings.Compare(a.EntryPath, b.EntryPath)
	})
}

// Succeeded returns the number of successful entries.
func (r *BuildReport) Succeeded() int {
	return r.count(StatusSuccess)
}

// Failed returns the number of failed entries.
func (r *BuildReport) Failed() int {
	return r.count(StatusFailed)
}

// Cached returns the number of entries reused from a previous build.
func (r *BuildReport) Cached() int {
	n := 0
	for _, e := range r.Entries {
		if e.Cached {
			n++
		}
	}
	return n
}

// OK reports whether every entry succeeded.
func (r *BuildReport) OK() bool {
	return r.Failed() == 0
}

func (r *BuildReport) count(s EntryStatus) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == s {
			n++
		}
	}
	return n
}
