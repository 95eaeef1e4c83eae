package birdtag

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TagMap maps a species label to its observation count. Persisted tag maps
// never contain zero or negative counts; a zero produced in-memory by
// NormalizeStoredTags exists only until the next mutation drops it.
type TagMap map[string]int

// Clone returns an independent copy of the map.
func (t TagMap) Clone() TagMap {
	out := make(TagMap, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Species returns the tag keys in no particular order.
func (t TagMap) Species() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	return out
}

var titleCaser = cases.Title(language.English)

// TitleSpecies normalizes a species label to title case.
func TitleSpecies(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}

// ParseWireTags converts wire-format tag entries into a tag map. Each entry
// is "species,count" or a bare "species" (count 1). The species name is
// normalized to title case. Entries with a missing name, a non-numeric count
// or a non-positive count are dropped; the codec never fails. When the same
// species appears in more than one entry its counts are summed.
func ParseWireTags(entries []string) TagMap {
	tags := make(TagMap)
	for _, entry := range entries {
		name, countStr, found := strings.Cut(entry, ",")
		species := TitleSpecies(name)
		if species == "" {
			continue
		}
		count := 1
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil || n <= 0 {
				continue
			}
			count = n
		}
		tags[species] += count
	}
	return tags
}

// NormalizeStoredTags coerces a schema-less stored tag map into a TagMap.
// Stored values may be integers, floats, or numeric strings (with or
// without a fractional part); fractional values truncate toward zero.
// Unparseable or negative values coerce to 0 and survive only in memory:
// any path that persists a tag map removes zero entries first.
func NormalizeStoredTags(raw map[string]any) TagMap {
	tags := make(TagMap, len(raw))
	for name, value := range raw {
		tags[name] = coerceCount(value)
	}
	return tags
}

func coerceCount(value any) int {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Floor(f))
}

// TitleCased returns a copy of the map with every species label normalized
// to title case, summing counts when two labels collapse to the same form.
func (t TagMap) TitleCased() TagMap {
	out := make(TagMap, len(t))
	for name, count := range t {
		out[TitleSpecies(name)] += count
	}
	return out
}

// WithoutZeroes returns a copy of the map with zero-count entries removed.
func (t TagMap) WithoutZeroes() TagMap {
	out := make(TagMap, len(t))
	for name, count := range t {
		if count > 0 {
			out[name] = count
		}
	}
	return out
}
