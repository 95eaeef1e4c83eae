package birdtag

import "strings"

// commonName extracts the human-readable part of an audio tag key. Audio
// model labels have the form "Scientific name_Common Name"; the common name
// is everything after the first underscore, or the whole key when there is
// no underscore.
func commonName(tagKey string) string {
	if _, common, found := strings.Cut(tagKey, "_"); found {
		return common
	}
	return tagKey
}

// MatchesAnySpecies reports whether the record's tags contain at least one
// of the requested species (OR semantics). Visual records match on an exact
// case-insensitive key lookup with count >= 1. Audio records match when the
// query is a case-insensitive substring of a tag key's common name and that
// tag's count is >= 1.
//
// An empty species list is a caller-side validation error and must be
// rejected before reaching the engine; here it simply matches nothing.
func MatchesAnySpecies(rec *MediaRecord, species []string) bool {
	for _, s := range species {
		if matchesSpecies(rec, s) {
			return true
		}
	}
	return false
}

func matchesSpecies(rec *MediaRecord, species string) bool {
	query := strings.ToLower(strings.TrimSpace(species))
	if query == "" {
		return false
	}
	if rec.Kind == KindAudio {
		for key, count := range rec.Tags {
			if count >= 1 && strings.Contains(strings.ToLower(commonName(key)), query) {
				return true
			}
		}
		return false
	}
	for key, count := range rec.Tags {
		if strings.EqualFold(key, query) {
			return count >= 1
		}
	}
	return false
}

// MeetsTagRequirements reports whether the record satisfies every
// requirement (AND semantics). For visual records each requirement is an
// exact case-insensitive lookup against its minimum count. For audio
// records a requirement is satisfied by the sum of counts across all tag
// keys whose common name contains the requirement as a substring.
//
// Requirements with non-positive minimums are a caller-side validation
// error; the engine assumes validated positive minimums.
func MeetsTagRequirements(rec *MediaRecord, requirements map[string]int) bool {
	for tag, min := range requirements {
		if countFor(rec, tag) < min {
			return false
		}
	}
	return len(requirements) > 0
}

func countFor(rec *MediaRecord, tag string) int {
	query := strings.ToLower(strings.TrimSpace(tag))
	if rec.Kind == KindAudio {
		sum := 0
		for key, count := range rec.Tags {
			if strings.Contains(strings.ToLower(commonName(key)), query) {
				sum += count
			}
		}
		return sum
	}
	for key, count := range rec.Tags {
		if strings.EqualFold(key, query) {
			return count
		}
	}
	return 0
}
