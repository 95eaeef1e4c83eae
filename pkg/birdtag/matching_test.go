package birdtag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

func visualRecord(tags birdtag.TagMap) *birdtag.MediaRecord {
	return &birdtag.MediaRecord{Kind: birdtag.KindImage, Tags: tags}
}

func audioRecord(tags birdtag.TagMap) *birdtag.MediaRecord {
	return &birdtag.MediaRecord{Kind: birdtag.KindAudio, Tags: tags}
}

func TestMatchesAnySpecies(t *testing.T) {
	tests := []struct {
		name    string
		rec     *birdtag.MediaRecord
		species []string
		want    bool
	}{
		{
			name:    "visual exact match case insensitive",
			rec:     visualRecord(birdtag.TagMap{"Crow": 2}),
			species: []string{"crow"},
			want:    true,
		},
		{
			name:    "visual substring does not match",
			rec:     visualRecord(birdtag.TagMap{"American Crow": 2}),
			species: []string{"crow"},
			want:    false,
		},
		{
			name:    "any of several species matches",
			rec:     visualRecord(birdtag.TagMap{"Pigeon": 1}),
			species: []string{"crow", "pigeon"},
			want:    true,
		},
		{
			name:    "audio substring on common name",
			rec:     audioRecord(birdtag.TagMap{"Corvus brachyrhynchos_American Crow": 1}),
			species: []string{"crow"},
			want:    true,
		},
		{
			name:    "audio scientific part not searched",
			rec:     audioRecord(birdtag.TagMap{"Corvus brachyrhynchos_American Crow": 1}),
			species: []string{"corvus"},
			want:    false,
		},
		{
			name:    "audio key without underscore matches whole key",
			rec:     audioRecord(birdtag.TagMap{"American Crow": 1}),
			species: []string{"crow"},
			want:    true,
		},
		{
			name:    "empty species list matches nothing",
			rec:     visualRecord(birdtag.TagMap{"Crow": 2}),
			species: nil,
			want:    false,
		},
		{
			name:    "no tags",
			rec:     visualRecord(birdtag.TagMap{}),
			species: []string{"crow"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, birdtag.MatchesAnySpecies(tt.rec, tt.species))
		})
	}
}

func TestMeetsTagRequirements(t *testing.T) {
	tests := []struct {
		name         string
		rec          *birdtag.MediaRecord
		requirements map[string]int
		want         bool
	}{
		{
			name:         "visual count meets minimum",
			rec:          visualRecord(birdtag.TagMap{"Crow": 3}),
			requirements: map[string]int{"crow": 3},
			want:         true,
		},
		{
			name:         "visual count below minimum",
			rec:          visualRecord(birdtag.TagMap{"Crow": 2}),
			requirements: map[string]int{"crow": 3},
			want:         false,
		},
		{
			name:         "all requirements must hold",
			rec:          visualRecord(birdtag.TagMap{"Crow": 3, "Pigeon": 1}),
			requirements: map[string]int{"crow": 2, "pigeon": 2},
			want:         false,
		},
		{
			name: "audio sums counts across matching keys",
			rec: audioRecord(birdtag.TagMap{
				"Corvus brachyrhynchos_American Crow": 1,
				"Corvus corax_Common Raven":           1,
				"Corvus cornix_Hooded Crow":           1,
			}),
			requirements: map[string]int{"crow": 2},
			want:         true,
		},
		{
			name:         "empty requirements never satisfied",
			rec:          visualRecord(birdtag.TagMap{"Crow": 3}),
			requirements: map[string]int{},
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, birdtag.MeetsTagRequirements(tt.rec, tt.requirements))
		})
	}
}
