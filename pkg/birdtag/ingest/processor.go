package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
	"github.com/tanagerlabs/birdtag/pkg/birdtag/detect"
)

// Processor handles storage events for a configured service.
type Processor struct {
	svc            birdtag.Service
	detector       detect.Detector
	resultStore    string
	thumbnailStore string
	workDir        string
	logger         *slog.Logger
}

// Config wires a Processor.
type Config struct {
	Service  birdtag.Service
	Detector detect.Detector
	// ResultStore receives detection output blobs under results/.
	ResultStore string
	// ThumbnailStore receives image thumbnails under thumbnails/.
	ThumbnailStore string
	// WorkDir holds blobs while the models run; defaults to the OS temp
	// directory.
	WorkDir string
	Logger  *slog.Logger
}

// NewProcessor builds a storage-event processor.
func NewProcessor(cfg Config) (*Processor, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if cfg.ResultStore == "" {
		return nil, fmt.Errorf("result store name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Processor{
		svc:            cfg.Service,
		detector:       cfg.Detector,
		resultStore:    cfg.ResultStore,
		thumbnailStore: cfg.ThumbnailStore,
		workDir:        workDir,
		logger:         logger,
	}, nil
}

// HandleEvent processes every item of the batch. Items are isolated from
// each other: a failure is captured in that item's result and processing
// moves on.
func (p *Processor) HandleEvent(ctx context.Context, event StorageEvent) []ItemResult {
	results := make([]ItemResult, 0, len(event.Items))
	for _, item := range event.Items {
		result := p.processItem(ctx, item)
		if result.Err != nil {
			p.logger.Error("failed to process item",
				"store", item.Store, "key", item.Key, "err", result.Err)
		}
		results = append(results, result)
	}
	return results
}

func (p *Processor) processItem(ctx context.Context, item EventItem) ItemResult {
	result := ItemResult{Store: item.Store, Key: item.Key, Kind: birdtag.KindFromPath(item.Key)}

	localPath, err := p.fetch(ctx, item)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			p.logger.Warn("failed to remove work file", "path", localPath, "err", err)
		}
	}()

	tags, err := p.detector.Detect(ctx, localPath, result.Kind)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	result.Tags = tags.WithoutZeroes()

	fileID := uuid.New().String()
	location := birdtag.Location{Store: item.Store, Key: item.Key}

	// The result blob is best-effort and written for every kind,
	// detectable or not.
	resultPath := p.writeResultBlob(ctx, fileID, location, result.Kind, result.Tags)

	if result.Kind == birdtag.KindUnsupported {
		result.Status = StatusSkipped
		return result
	}

	thumbnailPath := ""
	if result.Kind == birdtag.KindImage {
		thumbnailPath = p.writeThumbnail(ctx, fileID, location, localPath)
	}

	rec := &birdtag.MediaRecord{
		FileID:        fileID,
		OriginalPath:  location.URI(),
		ThumbnailPath: thumbnailPath,
		ResultPath:    resultPath,
		Kind:          result.Kind,
		UploadTime:    time.Now().UTC(),
		Tags:          result.Tags,
	}
	if err := p.svc.Records().Upsert(ctx, rec); err != nil {
		result.Status = StatusFailed
		result.Err = &birdtag.RecordError{FileID: fileID, Op: "ingest", Err: err}
		return result
	}

	result.Status = StatusProcessed
	result.FileID = fileID
	return result
}

// fetch downloads the item's blob into the work directory.
func (p *Processor) fetch(ctx context.Context, item EventItem) (string, error) {
	store, err := p.svc.BlobStore(item.Store)
	if err != nil {
		return "", err
	}
	body, err := store.Download(ctx, item.Key)
	if err != nil {
		return "", &birdtag.StoreError{Store: item.Store, Key: item.Key, Op: "download", Err: err}
	}
	defer body.Close()

	f, err := os.CreateTemp(p.workDir, "ingest-*"+filepath.Ext(item.Key))
	if err != nil {
		return "", fmt.Errorf("create work file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write work file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close work file: %w", err)
	}
	return f.Name(), nil
}

// resultDoc is the detection output blob.
type resultDoc struct {
	FileID      string         `json:"file_id"`
	Source      string         `json:"source"`
	Kind        birdtag.MediaKind `json:"file_type"`
	Tags        birdtag.TagMap `json:"tags"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// writeResultBlob uploads the detection output JSON. Failure is logged and
// the returned path is empty; the record is still written without it.
func (p *Processor) writeResultBlob(ctx context.Context, fileID string, source birdtag.Location, kind birdtag.MediaKind, tags birdtag.TagMap) string {
	store, err := p.svc.BlobStore(p.resultStore)
	if err != nil {
		p.logger.Warn("result store not registered", "store", p.resultStore)
		return ""
	}

	doc := resultDoc{
		FileID:      fileID,
		Source:      source.URI(),
		Kind:        kind,
		Tags:        tags,
		ProcessedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		p.logger.Error("failed to encode result blob", "file_id", fileID, "err", err)
		return ""
	}

	key := resultKey(source)
	if err := store.Upload(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		p.logger.Error("failed to upload result blob", "key", key, "err", err)
		return ""
	}
	return birdtag.Location{Store: p.resultStore, Key: key}.URI()
}

// resultKey names the result blob after the source object's base name.
func resultKey(source birdtag.Location) string {
	base := source.Basename()
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return "results/" + base + ".json"
}
