package birdtag

// TagOp selects the direction of a bulk tag edit. The wire encoding is the
// bare integer: 0 removes, 1 adds.
type TagOp int

const (
	TagOpRemove TagOp = 0
	TagOpAdd    TagOp = 1
)

// IsValid reports whether the operation is one of the two known values.
func (op TagOp) IsValid() bool {
	return op == TagOpRemove || op == TagOpAdd
}

func (op TagOp) String() string {
	if op == TagOpAdd {
		return "add"
	}
	return "remove"
}

// ApplyTagDelta applies deltas to current and returns a new map; neither
// input is mutated. Adding sums counts per key. Removing subtracts, floors
// at zero, and deletes any key whose count reaches zero; a zero count is
// never left behind. Keys absent from deltas pass through unchanged, and
// removing a key the record does not carry is a no-op.
//
// Deltas are assumed validated: every count positive (ParseWireTags
// guarantees this for wire input).
func ApplyTagDelta(current, deltas TagMap, op TagOp) TagMap {
	updated := current.Clone()
	for species, count := range deltas {
		switch op {
		case TagOpAdd:
			updated[species] += count
		case TagOpRemove:
			remaining, ok := updated[species]
			if !ok {
				continue
			}
			remaining -= count
			if remaining <= 0 {
				delete(updated, species)
			} else {
				updated[species] = remaining
			}
		}
	}
	return updated
}
