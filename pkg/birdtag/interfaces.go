package birdtag

import (
	"context"
	"io"
	"time"
)

// ItemStore is the schema-less metadata table: put, get-by-key,
// delete-by-key, and full-table scan. Implementations page through their
// backend internally; a Scan always visits every item, following
// continuation tokens to exhaustion.
type ItemStore interface {
	// Put creates or replaces the record keyed by its FileID.
	Put(ctx context.Context, rec *MediaRecord) error

	// Get returns the record for fileID, or ErrRecordNotFound.
	Get(ctx context.Context, fileID string) (*MediaRecord, error)

	// Delete removes the record for fileID. Deleting an absent id is not
	// an error at this layer.
	Delete(ctx context.Context, fileID string) error

	// Scan calls fn for every record in the table. Returning a non-nil
	// error from fn stops the scan and propagates the error.
	Scan(ctx context.Context, fn func(*MediaRecord) error) error
}

// BlobStore is one bucket of the byte-blob store. Presigned links are
// always minted fresh; implementations never cache them.
type BlobStore interface {
	// Upload writes the reader's content under key.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error

	// Download opens the blob at key for reading.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob at key.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-boxed read-only link for key.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)

	// PresignPut returns a time-boxed write link for key with the given
	// content type.
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
}

// BlobStores holds the configured blob stores keyed by store (bucket) name.
type BlobStores map[string]BlobStore

// For returns the blob store for the named bucket, or ErrBlobStoreNotFound.
func (s BlobStores) For(store string) (BlobStore, error) {
	b, ok := s[store]
	if !ok {
		return nil, &StoreError{Store: store, Op: "lookup", Err: ErrBlobStoreNotFound}
	}
	return b, nil
}
