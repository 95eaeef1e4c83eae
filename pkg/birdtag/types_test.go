package birdtag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

func TestKindForUpload(t *testing.T) {
	tests := []struct {
		contentType string
		want        birdtag.MediaKind
		ok          bool
	}{
		{"image/jpeg", birdtag.KindImage, true},
		{"image/gif", birdtag.KindImage, true},
		{"IMAGE/PNG", birdtag.KindImage, true},
		{"video/quicktime", birdtag.KindVideo, true},
		{"audio/wav", birdtag.KindAudio, true},
		{"application/pdf", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			kind, ok := birdtag.KindForUpload(tt.contentType)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, kind)
			}
		})
	}
}

func TestKindFromPath(t *testing.T) {
	tests := []struct {
		path string
		want birdtag.MediaKind
	}{
		{"birds/crow.jpg", birdtag.KindImage},
		{"crow.JPEG", birdtag.KindImage},
		{"crow.png", birdtag.KindImage},
		{"flock.mp4", birdtag.KindVideo},
		{"flock.mov", birdtag.KindVideo},
		{"dawn.mp3", birdtag.KindAudio},
		{"dawn.wav", birdtag.KindAudio},
		// Uploadable but not detectable.
		{"crow.gif", birdtag.KindUnsupported},
		{"notes.txt", birdtag.KindUnsupported},
		{"noextension", birdtag.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, birdtag.KindFromPath(tt.path))
		})
	}
}

func TestMediaRecordIsTemporary(t *testing.T) {
	temp := &birdtag.MediaRecord{OriginalPath: "s3://media/temp/20250101_000000_abc.jpg"}
	perm := &birdtag.MediaRecord{OriginalPath: "s3://media/20250101_000000_abc.jpg"}
	broken := &birdtag.MediaRecord{OriginalPath: "not-a-uri"}

	assert.True(t, temp.IsTemporary())
	assert.False(t, perm.IsTemporary())
	assert.False(t, broken.IsTemporary())
}
