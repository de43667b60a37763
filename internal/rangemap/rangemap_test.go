package rangemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tim() Entity { return NewEntity("1", "name", "Tim") }
func nic() Entity { return NewEntity("2", "name", "Nic") }

func mustMap(t *testing.T, ranges ...Range) Map {
	t.Helper()
	m, err := New(ranges...)
	require.NoError(t, err)
	return m
}

func TestFindContaining(t *testing.T) {
	m := mustMap(t, Range{Start: 3, End: 6, Entity: tim()})

	tests := []struct {
		offset int
		want   bool
	}{
		{2, false},
		{3, true},
		{6, true},
		{7, false},
	}
	for _, tt := range tests {
		_, ok := m.FindContaining(tt.offset)
		assert.Equal(t, tt.want, ok, "offset %d", tt.offset)
	}
}

func TestFindOverlapping(t *testing.T) {
	// "@Tim and @Nic"
	m := mustMap(t,
		Range{Start: 9, End: 12, Entity: nic()},
		Range{Start: 0, End: 3, Entity: tim()},
	)

	t.Run("caret intersects nothing", func(t *testing.T) {
		assert.Empty(t, m.FindOverlapping(Caret(2)))
	})
	t.Run("half-open end excludes start of next", func(t *testing.T) {
		got := m.FindOverlapping(Selection{Start: 4, End: 9})
		assert.Empty(t, got)
	})
	t.Run("spanning both is left to right", func(t *testing.T) {
		got := m.FindOverlapping(Selection{Start: 2, End: 10})
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].Entity.ID)
		assert.Equal(t, "2", got[1].Entity.ID)
	})
	t.Run("reversed selection is normalized", func(t *testing.T) {
		got := m.FindOverlapping(Selection{Start: 12, End: 11})
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].Entity.ID)
	})
}

func TestShiftIsPureTranslation(t *testing.T) {
	orig := mustMap(t,
		Range{Start: 0, End: 3, Entity: tim()},
		Range{Start: 9, End: 12, Entity: nic()},
	)
	shifted := orig.Shift(5, 2)

	got := shifted.Sorted()
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, 3, got[0].End)
	assert.Equal(t, 11, got[1].Start)
	assert.Equal(t, 14, got[1].End)

	// receiver unchanged
	assert.Equal(t, 9, orig.Sorted()[1].Start)
}

func TestInsertConflict(t *testing.T) {
	m := mustMap(t, Range{Start: 3, End: 6, Entity: tim()})

	next, err := m.Insert(Range{Start: 6, End: 9, Entity: nic()})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "1", conflict.Existing.Entity.ID)
	assert.Equal(t, 1, next.Len(), "map must be unchanged on conflict")

	next, err = m.Insert(Range{Start: 7, End: 10, Entity: nic()})
	require.NoError(t, err)
	assert.Equal(t, 2, next.Len())
	assert.Equal(t, 1, m.Len())
}

func TestInsertInvalid(t *testing.T) {
	_, err := Map{}.Insert(Range{Start: 4, End: 2})
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = Map{}.Insert(Range{Start: -1, End: 2})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDeleteIsNoopSafe(t *testing.T) {
	m := mustMap(t, Range{Start: 3, End: 6, Entity: tim()})
	assert.Equal(t, 1, m.Delete(Range{Start: 0, End: 1}).Len())
	assert.True(t, m.Delete(Range{Start: 3, End: 6}).IsEmpty())
}

func TestLastByPositionIgnoresInsertionOrder(t *testing.T) {
	m := mustMap(t,
		Range{Start: 9, End: 12, Entity: nic()},
		Range{Start: 0, End: 3, Entity: tim()},
	)
	last, ok := m.LastByPosition()
	require.True(t, ok)
	assert.Equal(t, "2", last.Entity.ID)

	inserted, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "1", inserted.Entity.ID)

	_, ok = Map{}.LastByPosition()
	assert.False(t, ok)
}

func TestValidateAndPrune(t *testing.T) {
	m := mustMap(t,
		Range{Start: 0, End: 3, Entity: tim()},
		Range{Start: 5, End: 8, Entity: nic()},
	)
	require.NoError(t, m.Validate(9))

	err := m.Validate(8)
	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 5, inv.Range.Start)

	pruned, dropped := m.Prune(8)
	assert.Equal(t, 1, pruned.Len())
	require.Len(t, dropped, 1)
	assert.Equal(t, "2", dropped[0].Entity.ID)
}

func TestEqualIgnoresOrderAndFields(t *testing.T) {
	a := mustMap(t,
		Range{Start: 0, End: 3, Entity: tim()},
		Range{Start: 5, End: 8, Entity: nic()},
	)
	b := mustMap(t,
		Range{Start: 5, End: 8, Entity: NewEntity("2", "name", "Nicholas")},
		Range{Start: 0, End: 3, Entity: NewEntity("1", "name", "Tim")},
	)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(a.Shift(0, 1)))
}

func TestEntityFromMap(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string]any
		wantID  string
		wantErr bool
	}{
		{name: "string id", in: map[string]any{"id": "abc", "name": "Tim"}, wantID: "abc"},
		{name: "json number id", in: map[string]any{"id": float64(7), "name": "Tim"}, wantID: "7"},
		{name: "int id", in: map[string]any{"id": 42}, wantID: "42"},
		{name: "missing id", in: map[string]any{"name": "Tim"}, wantErr: true},
		{name: "empty id", in: map[string]any{"id": ""}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := EntityFromMap(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, e.ID)
			assert.Equal(t, tt.wantID, e.AsMap()["id"])
		})
	}
}

func TestSelectionHelpers(t *testing.T) {
	s := Selection{Start: 8, End: 2}
	assert.Equal(t, Selection{Start: 2, End: 8}, s.Normalize())
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, Selection{Start: 2, End: 5}, s.Clamp(5))
	assert.True(t, Caret(3).IsCaret())
}
