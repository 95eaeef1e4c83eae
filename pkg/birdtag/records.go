package birdtag

import (
	"context"
	"strings"
)

// RecordStore wraps an ItemStore with the lookups the service needs beyond
// get-by-id. The underlying table is keyed by file id only, so every other
// lookup is a full scan; the adapter keeps that explicit instead of hiding
// it behind secondary indexes the table does not have.
type RecordStore struct {
	items ItemStore
}

// NewRecordStore builds a RecordStore over the given item store.
func NewRecordStore(items ItemStore) *RecordStore {
	return &RecordStore{items: items}
}

// FindByID returns the record for fileID, or ErrRecordNotFound.
func (s *RecordStore) FindByID(ctx context.Context, fileID string) (*MediaRecord, error) {
	return s.items.Get(ctx, fileID)
}

// Upsert writes the record, replacing any existing row with the same id.
func (s *RecordStore) Upsert(ctx context.Context, rec *MediaRecord) error {
	return s.items.Put(ctx, rec)
}

// Delete removes the record. Deleting an id that is already gone succeeds.
func (s *RecordStore) Delete(ctx context.Context, fileID string) error {
	return s.items.Delete(ctx, fileID)
}

// Each scans every record in the table, including transient sample records.
func (s *RecordStore) Each(ctx context.Context, fn func(*MediaRecord) error) error {
	return s.items.Scan(ctx, fn)
}

// EachPermanent scans every record whose original path is outside the
// transient sample namespace.
func (s *RecordStore) EachPermanent(ctx context.Context, fn func(*MediaRecord) error) error {
	return s.items.Scan(ctx, func(rec *MediaRecord) error {
		if rec.IsTemporary() {
			return nil
		}
		return fn(rec)
	})
}

// FindByLocation resolves a blob URI back to its record. The URI may point
// at any of the three blobs a record owns; originals win over thumbnails,
// and thumbnails over result blobs, when distinct records collide on a URI.
// Returns ErrRecordNotFound when nothing references the URI.
func (s *RecordStore) FindByLocation(ctx context.Context, uri string) (*MediaRecord, error) {
	var byOriginal, byThumbnail, byResult *MediaRecord
	err := s.items.Scan(ctx, func(rec *MediaRecord) error {
		switch uri {
		case rec.OriginalPath:
			if byOriginal == nil {
				byOriginal = rec
			}
		case rec.ThumbnailPath:
			if byThumbnail == nil {
				byThumbnail = rec
			}
		case rec.ResultPath:
			if byResult == nil {
				byResult = rec
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, rec := range []*MediaRecord{byOriginal, byThumbnail, byResult} {
		if rec != nil {
			return rec, nil
		}
	}
	return nil, ErrRecordNotFound
}

// FindByThumbnail returns the image record whose thumbnail URI matches.
func (s *RecordStore) FindByThumbnail(ctx context.Context, uri string) (*MediaRecord, error) {
	var found *MediaRecord
	err := s.items.Scan(ctx, func(rec *MediaRecord) error {
		if found == nil && rec.ThumbnailPath != "" && rec.ThumbnailPath == uri {
			found = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrRecordNotFound
	}
	return found, nil
}

// FindByBasename returns the record whose original key ends in the given
// file name. Matching is on the final path component, so "bird.jpg" matches
// "temp/bird.jpg" but not "hummingbird.jpg".
func (s *RecordStore) FindByBasename(ctx context.Context, base string) (*MediaRecord, error) {
	var found *MediaRecord
	err := s.items.Scan(ctx, func(rec *MediaRecord) error {
		if found != nil {
			return nil
		}
		loc, ok := ParseBlobURI(rec.OriginalPath)
		if !ok {
			return nil
		}
		if loc.Key == base || strings.HasSuffix(loc.Key, "/"+base) {
			found = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrRecordNotFound
	}
	return found, nil
}
