package birdtag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

func TestParseWireTags(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    birdtag.TagMap
	}{
		{
			name:    "name and count",
			entries: []string{"crow,3"},
			want:    birdtag.TagMap{"Crow": 3},
		},
		{
			name:    "bare name defaults to one",
			entries: []string{"crow"},
			want:    birdtag.TagMap{"Crow": 1},
		},
		{
			name:    "title case normalization",
			entries: []string{"great blue heron,2"},
			want:    birdtag.TagMap{"Great Blue Heron": 2},
		},
		{
			name:    "duplicate species summed",
			entries: []string{"crow,2", "Crow,3"},
			want:    birdtag.TagMap{"Crow": 5},
		},
		{
			name:    "invalid count dropped",
			entries: []string{"crow,abc", "pigeon,2"},
			want:    birdtag.TagMap{"Pigeon": 2},
		},
		{
			name:    "non-positive counts dropped",
			entries: []string{"crow,0", "pigeon,-4", "owl,1"},
			want:    birdtag.TagMap{"Owl": 1},
		},
		{
			name:    "empty name dropped",
			entries: []string{",3", "  ,2", ""},
			want:    birdtag.TagMap{},
		},
		{
			name:    "whitespace around count tolerated",
			entries: []string{"crow, 4"},
			want:    birdtag.TagMap{"Crow": 4},
		},
		{
			name:    "no entries",
			entries: nil,
			want:    birdtag.TagMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, birdtag.ParseWireTags(tt.entries))
		})
	}
}

func TestNormalizeStoredTags(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want birdtag.TagMap
	}{
		{
			name: "integers pass through",
			raw:  map[string]any{"Crow": 3},
			want: birdtag.TagMap{"Crow": 3},
		},
		{
			name: "floats truncate",
			raw:  map[string]any{"Crow": 2.9},
			want: birdtag.TagMap{"Crow": 2},
		},
		{
			name: "numeric strings parse",
			raw:  map[string]any{"Crow": "4"},
			want: birdtag.TagMap{"Crow": 4},
		},
		{
			name: "decimal strings truncate",
			raw:  map[string]any{"Crow": "2.7"},
			want: birdtag.TagMap{"Crow": 2},
		},
		{
			name: "garbage coerces to zero",
			raw:  map[string]any{"Crow": "lots", "Owl": []string{"x"}},
			want: birdtag.TagMap{"Crow": 0, "Owl": 0},
		},
		{
			name: "negative coerces to zero",
			raw:  map[string]any{"Crow": -2},
			want: birdtag.TagMap{"Crow": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, birdtag.NormalizeStoredTags(tt.raw))
		})
	}
}

func TestTagMapTitleCased(t *testing.T) {
	tags := birdtag.TagMap{"crow": 2, "CROW": 3, "pigeon": 1}
	assert.Equal(t, birdtag.TagMap{"Crow": 5, "Pigeon": 1}, tags.TitleCased())
}

func TestTagMapWithoutZeroes(t *testing.T) {
	tags := birdtag.TagMap{"Crow": 2, "Owl": 0, "Pigeon": -1}
	assert.Equal(t, birdtag.TagMap{"Crow": 2}, tags.WithoutZeroes())
}

func TestTagMapCloneIsIndependent(t *testing.T) {
	orig := birdtag.TagMap{"Crow": 2}
	clone := orig.Clone()
	clone["Crow"] = 9
	clone["Owl"] = 1
	assert.Equal(t, birdtag.TagMap{"Crow": 2}, orig)
}
