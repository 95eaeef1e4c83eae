package detect

import (
	"context"
	"errors"
	"io"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// VideoTagger counts distinct individuals across a video using tracker
// identities. Each track is counted once for its species no matter how many
// frames it appears in.
type VideoTagger struct {
	detector   FrameDetector
	newTracker func() Tracker
	threshold  float64
}

// NewVideoTagger builds a video tagger. newTracker is called once per video
// so tracker state never leaks between files. A non-positive threshold
// falls back to DefaultConfidence.
func NewVideoTagger(detector FrameDetector, newTracker func() Tracker, threshold float64) *VideoTagger {
	if threshold <= 0 {
		threshold = DefaultConfidence
	}
	return &VideoTagger{detector: detector, newTracker: newTracker, threshold: threshold}
}

// Tag walks the video's frames, feeds above-threshold detections to a fresh
// tracker, and counts each track identity exactly once under the species it
// was first seen as. Sub-threshold detections never reach the tracker, so
// they influence neither counting nor track identity.
func (t *VideoTagger) Tag(ctx context.Context, frames FrameSource) (birdtag.TagMap, error) {
	tracker := t.newTracker()
	tags := make(birdtag.TagMap)
	seen := make(map[int]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := frames.Next()
		if errors.Is(err, io.EOF) {
			return tags, nil
		}
		if err != nil {
			return nil, err
		}

		detections, err := t.detector.Detect(ctx, frame)
		if err != nil {
			return nil, err
		}
		kept := detections[:0]
		for _, d := range detections {
			if d.Confidence >= t.threshold {
				kept = append(kept, d)
			}
		}

		for _, tracked := range tracker.Update(kept) {
			if _, counted := seen[tracked.TrackID]; counted {
				continue
			}
			seen[tracked.TrackID] = struct{}{}
			species := birdtag.TitleSpecies(tracked.Species)
			if species == "" {
				continue
			}
			tags[species]++
		}
	}
}
