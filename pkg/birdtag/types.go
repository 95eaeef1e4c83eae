package birdtag

import (
	"path"
	"strings"
	"time"
)

// MediaKind is the closed set of media categories the pipeline understands.
type MediaKind string

// Media kind constants (typed).
const (
	KindImage       MediaKind = "image"
	KindVideo       MediaKind = "video"
	KindAudio       MediaKind = "audio"
	KindUnsupported MediaKind = "unsupported"
)

// IsValid reports whether k is one of the known media kinds.
func (k MediaKind) IsValid() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindUnsupported:
		return true
	}
	return false
}

// TempPrefix is the reserved key namespace for transient sample uploads.
// Records whose original path lives under it are invisible to the gallery
// and to sample-seeded searches, and are deleted after a single use.
const TempPrefix = "temp/"

// MediaRecord is the metadata row kept for every ingested media file.
//
// The three path fields hold blob-store URIs in the canonical
// "s3://store/key" form. ThumbnailPath is only ever set for images;
// ResultPath points at the JSON detection output.
type MediaRecord struct {
	FileID        string    `json:"file_id"`
	OriginalPath  string    `json:"original_s3_path"`
	ThumbnailPath string    `json:"thumbnail_s3_path,omitempty"`
	ResultPath    string    `json:"result_s3_path,omitempty"`
	Kind          MediaKind `json:"file_type"`
	UploadTime    time.Time `json:"upload_time"`
	Tags          TagMap    `json:"tags"`
	LastModified  time.Time `json:"last_modified,omitempty"`
}

// IsTemporary reports whether the record is a transient sample record.
func (r *MediaRecord) IsTemporary() bool {
	loc, ok := ParseBlobURI(r.OriginalPath)
	if !ok {
		return false
	}
	return strings.HasPrefix(loc.Key, TempPrefix)
}

// uploadContentTypes maps the accepted upload content types to the kind the
// pipeline will file them under.
var uploadContentTypes = map[string]MediaKind{
	"image/jpeg": KindImage, "image/jpg": KindImage, "image/png": KindImage,
	"image/gif": KindImage, "image/webp": KindImage,
	"video/mp4": KindVideo, "video/mov": KindVideo, "video/avi": KindVideo,
	"video/quicktime": KindVideo, "video/x-msvideo": KindVideo,
	"audio/mpeg": KindAudio, "audio/mp3": KindAudio, "audio/wav": KindAudio,
	"audio/ogg": KindAudio, "audio/m4a": KindAudio,
}

// KindForUpload returns the media kind for an upload content type, or false
// when the type is not accepted for upload at all.
func KindForUpload(contentType string) (MediaKind, bool) {
	k, ok := uploadContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return k, ok
}

// KindFromPath classifies a stored object by its file extension. Only the
// extensions the detection models handle count as supported; everything else
// (including uploadable-but-undetectable types such as GIF) is unsupported.
func KindFromPath(p string) MediaKind {
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg", ".png":
		return KindImage
	case ".mp4", ".mov", ".avi":
		return KindVideo
	case ".mp3", ".wav", ".ogg", ".m4a":
		return KindAudio
	}
	return KindUnsupported
}
