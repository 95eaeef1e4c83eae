package ingest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// thumbnailSize is the bounding box thumbnails are fit into.
const thumbnailSize = 128

// writeThumbnail renders and uploads a thumbnail for an image. Thumbnails
// are best-effort: any failure is logged and the returned path is empty, so
// the record is written without one.
func (p *Processor) writeThumbnail(ctx context.Context, fileID string, source birdtag.Location, localPath string) string {
	if p.thumbnailStore == "" {
		return ""
	}
	store, err := p.svc.BlobStore(p.thumbnailStore)
	if err != nil {
		p.logger.Warn("thumbnail store not registered", "store", p.thumbnailStore)
		return ""
	}

	img, err := imaging.Open(localPath, imaging.AutoOrientation(true))
	if err != nil {
		p.logger.Error("failed to decode image for thumbnail", "file_id", fileID, "err", err)
		return ""
	}
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	// PNG stays PNG so transparency survives; everything else becomes
	// JPEG.
	format := imaging.JPEG
	contentType := "image/jpeg"
	if strings.EqualFold(filepath.Ext(source.Key), ".png") {
		format = imaging.PNG
		contentType = "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		p.logger.Error("failed to encode thumbnail", "file_id", fileID, "err", err)
		return ""
	}

	key := "thumbnails/" + fileID + "_" + source.Basename()
	if err := store.Upload(ctx, key, &buf, contentType); err != nil {
		p.logger.Error("failed to upload thumbnail", "key", key, "err", err)
		return ""
	}
	return birdtag.Location{Store: p.thumbnailStore, Key: key}.URI()
}
