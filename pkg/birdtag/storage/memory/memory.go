// Package memory provides an in-memory blob store for tests and development.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// Backend is an in-memory implementation of the birdtag.BlobStore interface.
// Presigned links are synthetic virtual-hosted URLs; they resolve nowhere but
// carry the same shape real ones do, so code that parses them back works.
type Backend struct {
	mu           sync.RWMutex
	bucket       string
	objects      map[string][]byte
	contentTypes map[string]string
}

// New creates a new in-memory storage backend posing as the named bucket
func New(bucket string) *Backend {
	return &Backend{
		bucket:       bucket,
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// Upload stores the reader's content under key
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.contentTypes[key] = contentType
	return nil
}

// Download opens the stored content at key
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the content at key
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	delete(b.contentTypes, key)
	return nil
}

// PresignGet returns a synthetic presigned download URL
func (b *Backend) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return b.presign(key, expires), nil
}

// PresignPut returns a synthetic presigned upload URL
func (b *Backend) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return b.presign(key, expires), nil
}

func (b *Backend) presign(key string, expires time.Duration) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d",
		b.bucket, key, int(expires.Seconds()))
}

// Has reports whether an object exists at key. Test helper.
func (b *Backend) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.objects[key]
	return exists
}

// ContentType returns the stored content type for key. Test helper.
func (b *Backend) ContentType(key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contentTypes[key]
}

var _ birdtag.BlobStore = (*Backend)(nil)
