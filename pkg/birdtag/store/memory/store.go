// Package memory provides an in-memory item store for tests and development.
package memory

import (
	"context"
	"sync"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// Store implements birdtag.ItemStore using in-memory storage
type Store struct {
	mu      sync.RWMutex
	records map[string]*birdtag.MediaRecord
}

// New creates a new in-memory item store
func New() birdtag.ItemStore {
	return &Store{
		records: make(map[string]*birdtag.MediaRecord),
	}
}

func (s *Store) Put(ctx context.Context, rec *birdtag.MediaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external modifications
	recCopy := *rec
	recCopy.Tags = rec.Tags.Clone()
	s.records[rec.FileID] = &recCopy

	return nil
}

func (s *Store) Get(ctx context.Context, fileID string) (*birdtag.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[fileID]
	if !exists {
		return nil, birdtag.ErrRecordNotFound
	}

	recCopy := *rec
	recCopy.Tags = rec.Tags.Clone()
	return &recCopy, nil
}

func (s *Store) Delete(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, fileID)
	return nil
}

func (s *Store) Scan(ctx context.Context, fn func(*birdtag.MediaRecord) error) error {
	// Snapshot under the read lock so fn may call back into the store.
	s.mu.RLock()
	snapshot := make([]*birdtag.MediaRecord, 0, len(s.records))
	for _, rec := range s.records {
		recCopy := *rec
		recCopy.Tags = rec.Tags.Clone()
		snapshot = append(snapshot, &recCopy)
	}
	s.mu.RUnlock()

	for _, rec := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
