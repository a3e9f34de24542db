package domain

import "time"

// BuildInfo records the last successful static build of an entry.
// It lets later builds skip entries whose fingerprint and output are unchanged.
type BuildInfo struct {
	Entry       string      `json:"entry,omitzero"`
	Fingerprint Fingerprint `json:"fingerprint,omitzero"`
	OutputHash  string      `json:"output_hash,omitzero"`
	Timestamp   time.Time   `json:"timestamp,omitzero"`
}
