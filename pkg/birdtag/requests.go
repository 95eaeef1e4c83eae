package birdtag

import "time"

// Request/Response DTOs

// NewUploadLinkRequest contains parameters for minting an upload link.
type NewUploadLinkRequest struct {
	FileName    string
	ContentType string
	// Temporary routes the upload into the transient sample namespace.
	Temporary bool
}

// UploadLink is a freshly minted presigned upload slot.
type UploadLink struct {
	URL         string        `json:"uploadUrl"`
	Store       string        `json:"bucket"`
	Key         string        `json:"s3Key"`
	Kind        MediaKind     `json:"fileType"`
	ContentType string        `json:"contentType"`
	ExpiresIn   time.Duration `json:"-"`
	Temporary   bool          `json:"isTemporary"`
}

// SampleSearchRequest identifies a transient sample upload to seed a
// species search from. Key must live under the transient namespace.
type SampleSearchRequest struct {
	FileID string
	Key    string
}

// SampleSearchResult carries what the sample was tagged with and the links
// of permanent files sharing at least one of those species.
type SampleSearchResult struct {
	Tags  TagMap   `json:"detectedTags"`
	Links []string `json:"links"`
}

// BulkEditTagsRequest contains parameters for a bulk tag edit across files.
// Tags uses the wire "species,count" form.
type BulkEditTagsRequest struct {
	URLs []string
	Op   TagOp
	Tags []string
}

// BulkFailure reports why one URL of a batch could not be processed.
type BulkFailure struct {
	URL    string `json:"url"`
	Reason string `json:"error"`
}

// BulkEditResult splits a bulk tag edit into per-URL outcomes.
type BulkEditResult struct {
	Updated []string      `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
}

// PartialFailure reports whether any item of the batch failed.
func (r *BulkEditResult) PartialFailure() bool { return len(r.Failed) > 0 }

// DeleteResult splits a bulk delete into per-URL outcomes.
type DeleteResult struct {
	Deleted []string      `json:"deleted"`
	Failed  []BulkFailure `json:"failed"`
}

// PartialFailure reports whether any item of the batch failed.
func (r *DeleteResult) PartialFailure() bool { return len(r.Failed) > 0 }

// GalleryRequest contains paging parameters for the gallery listing.
type GalleryRequest struct {
	Limit  int
	Offset int
}

// GalleryItem is one entry of the gallery listing.
type GalleryItem struct {
	FileID     string    `json:"fileId"`
	URL        string    `json:"url"`
	Kind       MediaKind `json:"fileType"`
	UploadTime time.Time `json:"uploadTime"`
	Tags       TagMap    `json:"tags"`
}

// Gallery groups permanent media newest-first by kind.
type Gallery struct {
	Images []GalleryItem `json:"images"`
	Videos []GalleryItem `json:"videos"`
	Audio  []GalleryItem `json:"audio"`
	Other  []GalleryItem `json:"other"`
}

// Total returns the number of items across all groups.
func (g *Gallery) Total() int {
	return len(g.Images) + len(g.Videos) + len(g.Audio) + len(g.Other)
}
