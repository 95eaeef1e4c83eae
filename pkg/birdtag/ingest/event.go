// Package ingest processes storage events for newly uploaded media: it
// downloads the blob, runs detection, writes the result blob and thumbnail,
// and creates the metadata record.
package ingest

import "github.com/tanagerlabs/birdtag/pkg/birdtag"

// StorageEvent is a batch of object-created notifications.
type StorageEvent struct {
	Items []EventItem `json:"items"`
}

// EventItem identifies one newly created object.
type EventItem struct {
	Store string `json:"store"`
	Key   string `json:"key"`
}

// ItemStatus is the outcome class of one processed event item.
type ItemStatus string

const (
	// StatusProcessed means a record was written for the item.
	StatusProcessed ItemStatus = "processed"
	// StatusSkipped means the item's kind is not detectable; only a
	// result blob was written.
	StatusSkipped ItemStatus = "skipped"
	// StatusFailed means the item could not be processed at all.
	StatusFailed ItemStatus = "failed"
)

// ItemResult is the per-item outcome of a batch. One item failing never
// affects its siblings.
type ItemResult struct {
	Store  string           `json:"store"`
	Key    string           `json:"key"`
	Status ItemStatus       `json:"status"`
	FileID string           `json:"fileId,omitempty"`
	Kind   birdtag.MediaKind `json:"fileType,omitempty"`
	Tags   birdtag.TagMap   `json:"tags,omitempty"`
	Err    error            `json:"-"`
}
