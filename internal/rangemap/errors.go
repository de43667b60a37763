package rangemap

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for ranges with a negative start or an end
// before the start.
var ErrInvalidRange = errors.New("invalid range")

// ConflictError reports an insert that would overlap an existing range.
type ConflictError struct {
	Range    Range
	Existing Range
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("range [%d,%d] (id %s) overlaps existing range [%d,%d] (id %s)",
		e.Range.Start, e.Range.End, e.Range.Entity.ID,
		e.Existing.Start, e.Existing.End, e.Existing.Entity.ID)
}

// InvariantError describes a map that no longer fits its text.
type InvariantError struct {
	Range   Range
	TextLen int
	Reason  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("range [%d,%d] violates invariant for text of length %d: %s",
		e.Range.Start, e.Range.End, e.TextLen, e.Reason)
}
