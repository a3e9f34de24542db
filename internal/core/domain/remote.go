package domain

import "time"

// RemoteRecord is the persisted state of a fetched remote module. It carries
// the validators needed to revalidate the module with a conditional request.
type RemoteRecord struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitzero"`
	LastModified string    `json:"last_modified,omitzero"`
	Content      string    `json:"content"`
	ContentHash  string    `json:"content_hash"`
	FetchedAt    time.Time `json:"fetched_at,omitzero"`
}
