// Package detect turns media files into species tag maps. The models
// themselves (visual detector, multi-object tracker, audio classifier) are
// black boxes behind interfaces; this package owns the orchestration around
// them: thresholding, counting, track de-duplication, and audio windowing.
package detect

import (
	"context"
	"image"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// Detection is one model observation of a species in a frame or window.
type Detection struct {
	Species    string
	Confidence float64
}

// TrackedDetection is a detection bound to a tracker identity. Two tracked
// detections with the same TrackID are the same individual across frames.
type TrackedDetection struct {
	Detection
	TrackID int
}

// FrameDetector locates species in a single frame.
type FrameDetector interface {
	Detect(ctx context.Context, frame image.Image) ([]Detection, error)
}

// Tracker assigns persistent identities to detections across consecutive
// frames. Implementations are stateful; one Tracker serves one video.
type Tracker interface {
	Update(detections []Detection) []TrackedDetection
}

// FrameSource yields the frames of a video in order. Next returns io.EOF
// when the stream is exhausted.
type FrameSource interface {
	Next() (image.Image, error)
	Close() error
}

// FrameOpener decodes a media file into frames.
type FrameOpener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

// AudioClip is decoded mono audio.
type AudioClip struct {
	Samples    []float32
	SampleRate int
}

// AudioOpener decodes an audio file into a mono clip.
type AudioOpener interface {
	Open(ctx context.Context, path string) (AudioClip, error)
}

// WindowClassifier scores one fixed-length audio window. The window is
// always ClassifierRate samples per second times WindowSeconds long.
type WindowClassifier interface {
	Classify(ctx context.Context, window []float32) ([]Detection, error)
}

// Detector is what the ingest pipeline consumes: a path plus its media kind
// in, a tag map out. Detection failure is not an error at this level; a
// file the models cannot handle yields an empty map.
type Detector interface {
	Detect(ctx context.Context, path string, kind birdtag.MediaKind) (birdtag.TagMap, error)
}
