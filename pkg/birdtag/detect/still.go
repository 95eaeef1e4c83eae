package detect

import (
	"context"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// StillOpener decodes still image files into a one-frame source. Video
// decoding needs a codec-aware opener and is wired separately.
type StillOpener struct{}

func (StillOpener) Open(ctx context.Context, path string) (FrameSource, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return &singleFrame{frame: img}, nil
}

type singleFrame struct {
	frame image.Image
	done  bool
}

func (s *singleFrame) Next() (image.Image, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.frame, nil
}

func (s *singleFrame) Close() error { return nil }

var _ FrameOpener = StillOpener{}
