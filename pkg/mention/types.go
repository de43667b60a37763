package mention

import (
	"errors"

	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
	"github.com/oakwood-commons/mentionx/internal/reconcile"
	"github.com/oakwood-commons/mentionx/internal/trigger"
)

type (
	Entity        = rangemap.Entity
	Range         = rangemap.Range
	Map           = rangemap.Map
	Selection     = rangemap.Selection
	Span          = markup.Span
	Policy        = trigger.Policy
	TrackingState = trigger.State
	TrackingEvent = trigger.Event
	EditKind      = reconcile.Kind

	ConflictError           = rangemap.ConflictError
	MalformedMarkupError    = markup.MalformedMarkupError
	UnreconcilableEditError = reconcile.UnreconcilableEditError
)

const (
	Anywhere    = trigger.Anywhere
	NewWordOnly = trigger.NewWordOnly

	// DefaultDisplayField is the entity field shown when none is configured.
	DefaultDisplayField = rangemap.DefaultDisplayField
)

var (
	// ErrNotTracking is returned when a suggestion is accepted with no open
	// trigger session.
	ErrNotTracking = errors.New("no mention session is open")
	// ErrReentrantCall is returned when an Editor method is called from
	// inside one of its own notifications.
	ErrReentrantCall = errors.New("editor called from inside a notification")
	// ErrInvalidEntity is returned for entities that cannot be written as
	// canonical tokens.
	ErrInvalidEntity = reconcile.ErrInvalidEntity
)

// NewEntity builds an entity carrying a single display field.
func NewEntity(id, displayField, display string) Entity {
	return rangemap.NewEntity(id, displayField, display)
}

// EntityFromMap converts a decoded object with an "id" key into an Entity.
func EntityFromMap(m map[string]any) (Entity, error) {
	return rangemap.EntityFromMap(m)
}

// Caret returns an empty selection at offset.
func Caret(offset int) Selection {
	return rangemap.Caret(offset)
}

// ParsePolicy parses "anywhere" or "new-word-only".
func ParsePolicy(s string) (Policy, error) {
	return trigger.ParsePolicy(s)
}
