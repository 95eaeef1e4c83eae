package detect

import (
	"context"
	"image"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// DefaultConfidence is the confidence floor applied when a tagger is built
// without an explicit threshold.
const DefaultConfidence = 0.5

// ImageTagger counts species occurrences in a single frame.
type ImageTagger struct {
	detector  FrameDetector
	threshold float64
}

// NewImageTagger builds an image tagger. A non-positive threshold falls
// back to DefaultConfidence.
func NewImageTagger(detector FrameDetector, threshold float64) *ImageTagger {
	if threshold <= 0 {
		threshold = DefaultConfidence
	}
	return &ImageTagger{detector: detector, threshold: threshold}
}

// Tag runs detection on one frame and counts, per species, the detections
// at or above the confidence threshold. Species names are normalized to
// title case so the same bird never appears under two casings.
func (t *ImageTagger) Tag(ctx context.Context, frame image.Image) (birdtag.TagMap, error) {
	detections, err := t.detector.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}
	tags := make(birdtag.TagMap)
	for _, d := range detections {
		if d.Confidence < t.threshold {
			continue
		}
		species := birdtag.TitleSpecies(d.Species)
		if species == "" {
			continue
		}
		tags[species]++
	}
	return tags, nil
}
