package birdtag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tanagerlabs/birdtag/pkg/birdtag/objectkey"
)

// service implements the Service interface
type service struct {
	records      *RecordStore
	blobStores   BlobStores
	uploadStore  string
	keys         objectkey.Generator
	linkTTL      time.Duration
	pollAttempts int
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithItemStore sets the metadata table backend for the service
func WithItemStore(items ItemStore) Option {
	return func(s *service) {
		s.records = NewRecordStore(items)
	}
}

// WithBlobStore adds a blob storage backend under the given store name
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(BlobStores)
		}
		s.blobStores[name] = store
	}
}

// WithUploadStore names the blob store new uploads are presigned into
func WithUploadStore(name string) Option {
	return func(s *service) {
		s.uploadStore = name
	}
}

// WithKeyGenerator sets the upload key generation strategy
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithLinkTTL sets the lifetime of presigned links
func WithLinkTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.linkTTL = ttl
	}
}

// WithPollPolicy sets how long a sample search waits for detection results
func WithPollPolicy(attempts int, interval time.Duration) Option {
	return func(s *service) {
		s.pollAttempts = attempts
		s.pollInterval = interval
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores:   make(BlobStores),
		keys:         objectkey.NewTimestampedGenerator(TempPrefix),
		linkTTL:      5 * time.Hour,
		pollAttempts: 15,
		pollInterval: 2 * time.Second,
		logger:       slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.records == nil {
		return nil, fmt.Errorf("item store is required")
	}
	if s.uploadStore == "" {
		return nil, fmt.Errorf("upload store name is required")
	}
	if _, ok := s.blobStores[s.uploadStore]; !ok {
		return nil, fmt.Errorf("upload store %q is not registered", s.uploadStore)
	}
	return s, nil
}

// Records exposes the record store for the ingest pipeline.
func (s *service) Records() *RecordStore { return s.records }

// BlobStore returns the registered blob store for the given name.
func (s *service) BlobStore(name string) (BlobStore, error) {
	return s.blobStores.For(name)
}

// Upload operations

func (s *service) NewUploadLink(ctx context.Context, req NewUploadLinkRequest) (*UploadLink, error) {
	kind, ok := KindForUpload(req.ContentType)
	if !ok {
		return nil, NewValidationError("contentType", fmt.Sprintf("unsupported content type %q", req.ContentType))
	}
	key, err := s.keys.GenerateKey(req.FileName, req.Temporary)
	if err != nil {
		return nil, NewValidationError("fileName", err.Error())
	}

	store := s.blobStores[s.uploadStore]
	url, err := store.PresignPut(ctx, key, req.ContentType, s.linkTTL)
	if err != nil {
		return nil, &StoreError{Store: s.uploadStore, Key: key, Op: "presign-put", Err: err}
	}
	return &UploadLink{
		URL:         url,
		Store:       s.uploadStore,
		Key:         key,
		Kind:        kind,
		ContentType: req.ContentType,
		ExpiresIn:   s.linkTTL,
		Temporary:   req.Temporary,
	}, nil
}

// Search operations

func (s *service) SearchBySpecies(ctx context.Context, species []string) ([]string, error) {
	cleaned := make([]string, 0, len(species))
	for _, sp := range species {
		if trimmed := strings.TrimSpace(sp); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, NewValidationError("species", "at least one species is required")
	}
	return s.collectLinks(ctx, s.records.Each, func(rec *MediaRecord) bool {
		return MatchesAnySpecies(rec, cleaned)
	})
}

func (s *service) SearchByTags(ctx context.Context, requirements map[string]int) ([]string, error) {
	if len(requirements) == 0 {
		return nil, NewValidationError("tags", "at least one tag is required")
	}
	for tag, min := range requirements {
		if strings.TrimSpace(tag) == "" {
			return nil, NewValidationError("tags", "tag names must be non-empty")
		}
		if min <= 0 {
			return nil, NewValidationError("tags", fmt.Sprintf("count for %q must be positive", tag))
		}
	}
	return s.collectLinks(ctx, s.records.Each, func(rec *MediaRecord) bool {
		return MeetsTagRequirements(rec, requirements)
	})
}

func (s *service) SearchBySample(ctx context.Context, req SampleSearchRequest) (*SampleSearchResult, error) {
	if req.FileID == "" {
		return nil, NewValidationError("fileId", "file id is required")
	}
	if req.Key == "" {
		return nil, NewValidationError("s3Key", "object key is required")
	}
	if !strings.HasPrefix(req.Key, TempPrefix) {
		return nil, NewValidationError("s3Key", fmt.Sprintf("key must be under %s", TempPrefix))
	}

	sample, err := s.awaitSampleTags(ctx, req.FileID)
	if err != nil {
		return nil, err
	}
	defer s.cleanupSample(ctx, sample)

	species := sample.Tags.Species()
	links, err := s.collectLinks(ctx, s.records.EachPermanent, func(rec *MediaRecord) bool {
		return rec.FileID != sample.FileID && MatchesAnySpecies(rec, species)
	})
	if err != nil {
		return nil, err
	}
	return &SampleSearchResult{Tags: sample.Tags.Clone(), Links: links}, nil
}

// awaitSampleTags polls for the sample's record to show up with detection
// results. The ingest pipeline only writes records after detection, so a
// record with tags means processing finished.
func (s *service) awaitSampleTags(ctx context.Context, fileID string) (*MediaRecord, error) {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pollInterval):
			}
		}
		rec, err := s.records.FindByID(ctx, fileID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if len(rec.Tags) > 0 {
			return rec, nil
		}
	}
	return nil, ErrProcessingTimeout
}

// cleanupSample removes the transient sample's blob and record. Cleanup is
// best-effort; failures are logged and never surface to the caller.
func (s *service) cleanupSample(ctx context.Context, sample *MediaRecord) {
	if loc, ok := ParseBlobURI(sample.OriginalPath); ok {
		if store, err := s.blobStores.For(loc.Store); err == nil {
			if err := store.Delete(ctx, loc.Key); err != nil {
				s.logger.Error("failed to delete sample blob", "key", loc.Key, "err", err)
			}
		}
	}
	if err := s.records.Delete(ctx, sample.FileID); err != nil {
		s.logger.Error("failed to delete sample record", "file_id", sample.FileID, "err", err)
	}
}

func (s *service) ResolveThumbnail(ctx context.Context, thumbnailURL string) (string, error) {
	uri, ok := URLToBlobURI(thumbnailURL)
	if !ok {
		return "", ErrRecordNotFound
	}
	rec, err := s.records.FindByThumbnail(ctx, uri)
	if err != nil {
		return "", err
	}
	loc, ok := ParseBlobURI(rec.OriginalPath)
	if !ok {
		return "", &RecordError{FileID: rec.FileID, Op: "resolve_thumbnail", Err: fmt.Errorf("original path %q is not a blob URI", rec.OriginalPath)}
	}
	store, err := s.blobStores.For(loc.Store)
	if err != nil {
		return "", err
	}
	url, err := store.PresignGet(ctx, loc.Key, s.linkTTL)
	if err != nil {
		return "", &StoreError{Store: loc.Store, Key: loc.Key, Op: "presign-get", Err: err}
	}
	return url, nil
}

func (s *service) Gallery(ctx context.Context, req GalleryRequest) (*Gallery, error) {
	const maxLimit = 100
	limit := req.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var all []*MediaRecord
	err := s.records.EachPermanent(ctx, func(rec *MediaRecord) error {
		all = append(all, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].UploadTime.Equal(all[j].UploadTime) {
			return all[i].UploadTime.After(all[j].UploadTime)
		}
		return all[i].FileID < all[j].FileID
	})

	if offset >= len(all) {
		all = nil
	} else {
		all = all[offset:]
	}
	if len(all) > limit {
		all = all[:limit]
	}

	gallery := &Gallery{}
	for _, rec := range all {
		url, err := s.displayLink(ctx, rec)
		if err != nil {
			return nil, err
		}
		if url == "" {
			continue
		}
		item := GalleryItem{
			FileID:     rec.FileID,
			URL:        url,
			Kind:       rec.Kind,
			UploadTime: rec.UploadTime,
			Tags:       rec.Tags.Clone(),
		}
		switch rec.Kind {
		case KindImage:
			gallery.Images = append(gallery.Images, item)
		case KindVideo:
			gallery.Videos = append(gallery.Videos, item)
		case KindAudio:
			gallery.Audio = append(gallery.Audio, item)
		default:
			gallery.Other = append(gallery.Other, item)
		}
	}
	return gallery, nil
}

// Mutation operations

func (s *service) BulkEditTags(ctx context.Context, req BulkEditTagsRequest) (*BulkEditResult, error) {
	if !req.Op.IsValid() {
		return nil, NewValidationError("operation", "operation must be 0 (remove) or 1 (add)")
	}
	if len(req.URLs) == 0 {
		return nil, NewValidationError("urls", "at least one url is required")
	}
	deltas := ParseWireTags(req.Tags)
	if len(deltas) == 0 {
		return nil, NewValidationError("tags", "no valid tag entries")
	}

	result := &BulkEditResult{}
	for _, url := range req.URLs {
		if err := s.editTagsForURL(ctx, url, deltas, req.Op); err != nil {
			result.Failed = append(result.Failed, BulkFailure{URL: url, Reason: failureReason(err)})
			continue
		}
		result.Updated = append(result.Updated, url)
	}
	return result, nil
}

func (s *service) editTagsForURL(ctx context.Context, url string, deltas TagMap, op TagOp) error {
	rec, err := s.resolveURL(ctx, url)
	if err != nil {
		return err
	}
	rec.Tags = ApplyTagDelta(rec.Tags, deltas, op)
	rec.LastModified = time.Now().UTC()
	if err := s.records.Upsert(ctx, rec); err != nil {
		return &RecordError{FileID: rec.FileID, Op: fmt.Sprintf("tag_%s", op), Err: err}
	}
	return nil
}

func (s *service) DeleteByURLs(ctx context.Context, urls []string) (*DeleteResult, error) {
	if len(urls) == 0 {
		return nil, NewValidationError("urls", "at least one url is required")
	}

	result := &DeleteResult{}
	for _, url := range urls {
		if err := s.deleteByURL(ctx, url); err != nil {
			result.Failed = append(result.Failed, BulkFailure{URL: url, Reason: failureReason(err)})
			continue
		}
		result.Deleted = append(result.Deleted, url)
	}
	return result, nil
}

// deleteByURL removes one record and all the blobs it owns. Blob deletion
// failures are reported, but the record delete is still attempted so a
// half-cleaned file stays resolvable by id only until retried.
func (s *service) deleteByURL(ctx context.Context, url string) error {
	rec, err := s.resolveURL(ctx, url)
	if err != nil {
		return err
	}

	var firstErr error
	for _, uri := range []string{rec.OriginalPath, rec.ThumbnailPath, rec.ResultPath} {
		if uri == "" {
			continue
		}
		loc, ok := ParseBlobURI(uri)
		if !ok {
			continue
		}
		store, err := s.blobStores.For(loc.Store)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := store.Delete(ctx, loc.Key); err != nil {
			if firstErr == nil {
				firstErr = &StoreError{Store: loc.Store, Key: loc.Key, Op: "delete", Err: err}
			}
		}
	}
	if err := s.records.Delete(ctx, rec.FileID); err != nil {
		return &RecordError{FileID: rec.FileID, Op: "delete", Err: err}
	}
	return firstErr
}

// resolveURL maps a client-supplied URL to its record. Unrecognized URL
// shapes report as not found, matching how an unknown-but-wellformed URL
// reports.
func (s *service) resolveURL(ctx context.Context, url string) (*MediaRecord, error) {
	uri, ok := URLToBlobURI(url)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return s.records.FindByLocation(ctx, uri)
}

// collectLinks scans records via the given scanner, presigns a display link
// for every match, and deduplicates links within the response.
func (s *service) collectLinks(ctx context.Context, scan func(context.Context, func(*MediaRecord) error) error, match func(*MediaRecord) bool) ([]string, error) {
	links := []string{}
	seen := make(map[string]struct{})
	err := scan(ctx, func(rec *MediaRecord) error {
		if !match(rec) {
			return nil
		}
		url, err := s.displayLink(ctx, rec)
		if err != nil {
			return err
		}
		if url == "" {
			return nil
		}
		if _, dup := seen[url]; dup {
			return nil
		}
		seen[url] = struct{}{}
		links = append(links, url)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// displayLink presigns the link a search result shows for a record: the
// thumbnail for images that have one, the original otherwise. Records whose
// paths do not parse as blob URIs yield no link and are skipped.
func (s *service) displayLink(ctx context.Context, rec *MediaRecord) (string, error) {
	path := rec.OriginalPath
	if rec.Kind == KindImage && rec.ThumbnailPath != "" {
		path = rec.ThumbnailPath
	}
	loc, ok := ParseBlobURI(path)
	if !ok {
		s.logger.Warn("record has unresolvable blob path", "file_id", rec.FileID, "path", path)
		return "", nil
	}
	store, err := s.blobStores.For(loc.Store)
	if err != nil {
		s.logger.Warn("record references unregistered blob store", "file_id", rec.FileID, "store", loc.Store)
		return "", nil
	}
	url, err := store.PresignGet(ctx, loc.Key, s.linkTTL)
	if err != nil {
		return "", &StoreError{Store: loc.Store, Key: loc.Key, Op: "presign-get", Err: err}
	}
	return url, nil
}

// failureReason renders an error for the per-URL failure list.
func failureReason(err error) string {
	if errors.Is(err, ErrRecordNotFound) {
		return "file not found"
	}
	return err.Error()
}
