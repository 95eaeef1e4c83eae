package detect

import (
	"context"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// Audio model input format. Clips at any other rate are resampled before
// windowing.
const (
	ClassifierRate = 48000
	WindowSeconds  = 3
)

// AudioTagger classifies an audio clip in fixed windows and tags the
// species whose best window clears the confidence threshold.
type AudioTagger struct {
	classifier WindowClassifier
	threshold  float64
}

// NewAudioTagger builds an audio tagger. A non-positive threshold falls
// back to DefaultConfidence.
func NewAudioTagger(classifier WindowClassifier, threshold float64) *AudioTagger {
	if threshold <= 0 {
		threshold = DefaultConfidence
	}
	return &AudioTagger{classifier: classifier, threshold: threshold}
}

// Tag resamples the clip to the classifier rate, cuts it into
// non-overlapping windows (the final window padded with silence), keeps the
// maximum confidence per species across windows, and tags each species
// whose maximum clears the threshold. Audio counts individuals as present
// or absent, so every tagged species carries count 1.
func (t *AudioTagger) Tag(ctx context.Context, clip AudioClip) (birdtag.TagMap, error) {
	samples := Resample(clip.Samples, clip.SampleRate, ClassifierRate)
	windowLen := ClassifierRate * WindowSeconds

	best := make(map[string]float64)
	for start := 0; start < len(samples); start += windowLen {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + windowLen
		var window []float32
		if end <= len(samples) {
			window = samples[start:end]
		} else {
			window = make([]float32, windowLen)
			copy(window, samples[start:])
		}

		detections, err := t.classifier.Classify(ctx, window)
		if err != nil {
			return nil, err
		}
		for _, d := range detections {
			if d.Confidence > best[d.Species] {
				best[d.Species] = d.Confidence
			}
		}
	}

	tags := make(birdtag.TagMap)
	for species, confidence := range best {
		if confidence >= t.threshold && species != "" {
			tags[species] = 1
		}
	}
	return tags, nil
}

// Resample converts samples from one rate to another by linear
// interpolation. Matching rates and empty input pass through unchanged.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(samples) == 0 {
		return samples
	}
	outLen := int(float64(len(samples)) * float64(to) / float64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]float32, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}
