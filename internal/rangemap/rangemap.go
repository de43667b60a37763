package rangemap

import (
	"fmt"
	"sort"
)

// Range tags the inclusive rune span [Start, End] with an entity.
type Range struct {
	Start  int
	End    int
	Entity Entity
}

// NewRange builds a range covering length runes from start.
func NewRange(start, length int, entity Entity) Range {
	return Range{Start: start, End: start + length - 1, Entity: entity}
}

// Len returns the number of runes covered.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// Intersects reports whether the range shares a rune with the half-open
// selection [sel.Start, sel.End).
func (r Range) Intersects(sel Selection) bool {
	sel = sel.Normalize()
	return r.Start < sel.End && r.End >= sel.Start
}

// Overlaps reports whether two inclusive ranges share a rune.
func (r Range) Overlaps(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// SameSpan compares offsets only.
func (r Range) SameSpan(o Range) bool {
	return r.Start == o.Start && r.End == o.End
}

// Translate returns the range moved by delta.
func (r Range) Translate(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta, Entity: r.Entity}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]#%s", r.Start, r.End, r.Entity.ID)
}

// Map is an insertion-ordered, immutable set of disjoint ranges.
type Map struct {
	ranges []Range
}

// New builds a map by inserting ranges in order.
func New(ranges ...Range) (Map, error) {
	m := Map{}
	for _, r := range ranges {
		next, err := m.Insert(r)
		if err != nil {
			return Map{}, err
		}
		m = next
	}
	return m, nil
}

// Len returns the number of ranges.
func (m Map) Len() int {
	return len(m.ranges)
}

// IsEmpty reports whether the map has no ranges.
func (m Map) IsEmpty() bool {
	return len(m.ranges) == 0
}

// Ranges returns a copy of the ranges in insertion order.
func (m Map) Ranges() []Range {
	out := make([]Range, len(m.ranges))
	copy(out, m.ranges)
	return out
}

// Sorted returns a copy of the ranges ordered by Start.
func (m Map) Sorted() []Range {
	out := m.Ranges()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Entities returns the entities in left-to-right order.
func (m Map) Entities() []Entity {
	sorted := m.Sorted()
	out := make([]Entity, len(sorted))
	for i, r := range sorted {
		out[i] = r.Entity
	}
	return out
}

// FindContaining returns the range that contains offset.
func (m Map) FindContaining(offset int) (Range, bool) {
	for _, r := range m.ranges {
		if r.Contains(offset) {
			return r, true
		}
	}
	return Range{}, false
}

// FindOverlapping returns every range intersecting [sel.Start, sel.End), in
// left-to-right order. A caret intersects nothing.
func (m Map) FindOverlapping(sel Selection) []Range {
	var out []Range
	for _, r := range m.Sorted() {
		if r.Intersects(sel) {
			out = append(out, r)
		}
	}
	return out
}

// Shift translates every range with Start >= afterOffset by delta. Ranges that
// start earlier are left alone even if the edit touches them; callers delete
// those first.
func (m Map) Shift(afterOffset, delta int) Map {
	if delta == 0 || len(m.ranges) == 0 {
		return m
	}
	out := make([]Range, len(m.ranges))
	for i, r := range m.ranges {
		if r.Start >= afterOffset {
			r = r.Translate(delta)
		}
		out[i] = r
	}
	return Map{ranges: out}
}

// Insert adds r. It fails with *ConflictError when r overlaps an existing range
// and with ErrInvalidRange when r is malformed; m is unchanged in both cases.
func (m Map) Insert(r Range) (Map, error) {
	if r.Start < 0 || r.End < r.Start {
		return m, fmt.Errorf("%w: [%d,%d]", ErrInvalidRange, r.Start, r.End)
	}
	for _, existing := range m.ranges {
		if existing.Overlaps(r) {
			return m, &ConflictError{Range: r, Existing: existing}
		}
	}
	out := make([]Range, len(m.ranges), len(m.ranges)+1)
	copy(out, m.ranges)
	return Map{ranges: append(out, r)}, nil
}

// Delete removes the range with the same span as r. Absent ranges are ignored.
func (m Map) Delete(r Range) Map {
	return m.DeleteAll([]Range{r})
}

// DeleteAll removes every range whose span matches one of rs.
func (m Map) DeleteAll(rs []Range) Map {
	if len(rs) == 0 || len(m.ranges) == 0 {
		return m
	}
	out := make([]Range, 0, len(m.ranges))
	for _, existing := range m.ranges {
		drop := false
		for _, r := range rs {
			if existing.SameSpan(r) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, existing)
		}
	}
	return Map{ranges: out}
}

// LastByPosition returns the range with the greatest End.
func (m Map) LastByPosition() (Range, bool) {
	if len(m.ranges) == 0 {
		return Range{}, false
	}
	last := m.ranges[0]
	for _, r := range m.ranges[1:] {
		if r.End > last.End {
			last = r
		}
	}
	return last, true
}

// Last returns the most recently inserted range.
func (m Map) Last() (Range, bool) {
	if len(m.ranges) == 0 {
		return Range{}, false
	}
	return m.ranges[len(m.ranges)-1], true
}

// Validate checks disjointness and that every range fits a text of textLen
// runes.
func (m Map) Validate(textLen int) error {
	for i, r := range m.ranges {
		switch {
		case r.Start < 0:
			return &InvariantError{Range: r, TextLen: textLen, Reason: "negative start"}
		case r.End < r.Start:
			return &InvariantError{Range: r, TextLen: textLen, Reason: "end before start"}
		case r.End >= textLen:
			return &InvariantError{Range: r, TextLen: textLen, Reason: "end past text"}
		}
		for _, o := range m.ranges[i+1:] {
			if r.Overlaps(o) {
				return &InvariantError{Range: r, TextLen: textLen, Reason: fmt.Sprintf("overlaps %s", o)}
			}
		}
	}
	return nil
}

// Prune drops ranges that do not fit a text of textLen runes and returns the
// surviving map plus the dropped ranges.
func (m Map) Prune(textLen int) (Map, []Range) {
	var dropped []Range
	out := make([]Range, 0, len(m.ranges))
	for _, r := range m.ranges {
		if r.Start < 0 || r.End < r.Start || r.End >= textLen {
			dropped = append(dropped, r)
			continue
		}
		out = append(out, r)
	}
	if len(dropped) == 0 {
		return m, nil
	}
	return Map{ranges: out}, dropped
}

// Equal reports whether both maps hold the same spans with the same entity
// ids, ignoring insertion order.
func (m Map) Equal(o Map) bool {
	if len(m.ranges) != len(o.ranges) {
		return false
	}
	a, b := m.Sorted(), o.Sorted()
	for i := range a {
		if !a[i].SameSpan(b[i]) || a[i].Entity.ID != b[i].Entity.ID {
			return false
		}
	}
	return true
}
