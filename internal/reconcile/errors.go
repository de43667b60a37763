package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEntity is returned when an entity cannot be rendered as a
	// canonical token.
	ErrInvalidEntity = errors.New("invalid mention entity")

	// ErrTriggerOutOfRange is returned when the trigger index does not point
	// into the text.
	ErrTriggerOutOfRange = errors.New("trigger index out of range")
)

// UnreconcilableEditError reports an edit that is not a single contiguous
// insert, delete, or replace. Reconcile still returns a consistent Result
// built by the fallback path.
type UnreconcilableEditError struct {
	Hunks       int
	FirstChange int
}

func (e *UnreconcilableEditError) Error() string {
	return fmt.Sprintf("edit has %d separate changes (first at offset %d); range map re-derived", e.Hunks, e.FirstChange)
}
