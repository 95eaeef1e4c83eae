package detect

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// Suite bundles the per-kind taggers behind the Detector interface the
// ingest pipeline consumes. A kind whose tagger is missing, and any tagger
// failure, degrades to an empty tag map: the file is still recorded, just
// without tags.
type Suite struct {
	frames FrameOpener
	audio  AudioOpener
	images *ImageTagger
	videos *VideoTagger
	clips  *AudioTagger
	logger *slog.Logger
}

// SuiteConfig wires the decoders and taggers of a Suite. Any tagger may be
// nil; its media kind then always detects nothing.
type SuiteConfig struct {
	Frames FrameOpener
	Audio  AudioOpener
	Images *ImageTagger
	Videos *VideoTagger
	Clips  *AudioTagger
	Logger *slog.Logger
}

// NewSuite builds a detection suite.
func NewSuite(cfg SuiteConfig) *Suite {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Suite{
		frames: cfg.Frames,
		audio:  cfg.Audio,
		images: cfg.Images,
		videos: cfg.Videos,
		clips:  cfg.Clips,
		logger: logger,
	}
}

// Detect tags the file at path according to its kind. Model and decode
// failures are logged and reported as "nothing detected"; only context
// cancellation propagates as an error.
func (s *Suite) Detect(ctx context.Context, path string, kind birdtag.MediaKind) (birdtag.TagMap, error) {
	tags, err := s.detect(ctx, path, kind)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("detection failed", "path", path, "kind", kind, "err", err)
		return birdtag.TagMap{}, nil
	}
	if tags == nil {
		tags = birdtag.TagMap{}
	}
	return tags.WithoutZeroes(), nil
}

func (s *Suite) detect(ctx context.Context, path string, kind birdtag.MediaKind) (birdtag.TagMap, error) {
	switch kind {
	case birdtag.KindImage:
		if s.images == nil || s.frames == nil {
			return birdtag.TagMap{}, nil
		}
		frame, err := s.firstFrame(ctx, path)
		if err != nil {
			return nil, err
		}
		return s.images.Tag(ctx, frame)

	case birdtag.KindVideo:
		if s.videos == nil || s.frames == nil {
			return birdtag.TagMap{}, nil
		}
		source, err := s.frames.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		defer source.Close()
		return s.videos.Tag(ctx, source)

	case birdtag.KindAudio:
		if s.clips == nil || s.audio == nil {
			return birdtag.TagMap{}, nil
		}
		clip, err := s.audio.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return s.clips.Tag(ctx, clip)
	}
	return birdtag.TagMap{}, nil
}

// firstFrame decodes the single frame of a still image.
func (s *Suite) firstFrame(ctx context.Context, path string) (image.Image, error) {
	source, err := s.frames.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	frame, err := source.Next()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("image has no decodable frame")
	}
	return frame, err
}
