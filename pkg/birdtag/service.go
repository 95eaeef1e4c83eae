package birdtag

import (
	"context"
)

// Service defines the main interface for the birdtag library
type Service interface {
	// Upload operations
	NewUploadLink(ctx context.Context, req NewUploadLinkRequest) (*UploadLink, error)

	// Search operations
	SearchBySpecies(ctx context.Context, species []string) ([]string, error)
	SearchByTags(ctx context.Context, requirements map[string]int) ([]string, error)
	SearchBySample(ctx context.Context, req SampleSearchRequest) (*SampleSearchResult, error)
	ResolveThumbnail(ctx context.Context, thumbnailURL string) (string, error)
	Gallery(ctx context.Context, req GalleryRequest) (*Gallery, error)

	// Mutation operations
	BulkEditTags(ctx context.Context, req BulkEditTagsRequest) (*BulkEditResult, error)
	DeleteByURLs(ctx context.Context, urls []string) (*DeleteResult, error)

	// Record access for the ingest pipeline
	Records() *RecordStore
	BlobStore(name string) (BlobStore, error)
}
