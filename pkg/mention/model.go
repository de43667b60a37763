package mention

import (
	"fmt"

	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
	"github.com/oakwood-commons/mentionx/internal/reconcile"
	"github.com/oakwood-commons/mentionx/internal/selection"
	"github.com/oakwood-commons/mentionx/internal/trigger"
)

// Model is the mention-aware text state. The zero value is not usable; build
// one with New.
type Model struct {
	opts      options
	codec     markup.Codec
	tracker   trigger.Tracker
	text      string
	ranges    rangemap.Map
	selection Selection
}

// Change describes what an operation did.
type Change struct {
	// Redraw is set when the display text or its mention spans changed.
	Redraw bool
	// Removed lists mentions that lost their tag.
	Removed []Entity
	// Events are the tracking transitions, in order.
	Events []TrackingEvent
	// Selection is where the host selection belongs afterwards.
	Selection Selection
	// Edit is the recovered edit shape for text changes.
	Edit EditKind
	// Fallback is set when a text change could not be classified and the
	// mentions were re-derived.
	Fallback bool
}

// New builds an empty model.
func New(opts ...Option) (Model, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	tracker, err := trigger.New(o.trigger, o.policy, o.keywordPattern)
	if err != nil {
		return Model{}, fmt.Errorf("configure trigger: %w", err)
	}
	return Model{
		opts:    o,
		codec:   markup.NewCodec(o.displayField),
		tracker: tracker,
	}, nil
}

func (m Model) Text() string            { return m.text }
func (m Model) Ranges() Map             { return m.ranges }
func (m Model) Selection() Selection    { return m.selection }
func (m Model) Tracking() TrackingState { return m.tracker.State() }
func (m Model) DisplayField() string    { return m.opts.displayField }
func (m Model) Trigger() rune           { return m.tracker.Trigger() }
func (m Model) Canonical() string       { return m.codec.ToCanonical(m.text, m.ranges) }
func (m Model) Spans() []Span           { return markup.Spans(m.text, m.ranges) }
func (m Model) Mentions() []Entity      { return m.ranges.Entities() }
func (m Model) Len() int                { return len([]rune(m.text)) }

// SetCanonicalText replaces the whole state with parsed markup. Malformed
// markup is loaded as plain text and reported as *MalformedMarkupError next to
// a usable model.
func (m Model) SetCanonicalText(canonical string) (Model, Change, error) {
	doc, parseErr := m.codec.FromCanonical(canonical)

	var ch Change
	m.tracker, ch.Events = m.tracker.Cancel()
	m.text, m.ranges = doc.Text, doc.Ranges
	m.selection = Caret(m.Len())

	ch.Redraw = true
	ch.Selection = m.selection
	return m, ch, parseErr
}

// ApplyEdit reconciles a host text change. sel is the host selection after
// the change; fromTrigger marks a change where the host inserted the trigger
// itself and sel still points before it. An *UnreconcilableEditError is
// returned next to a consistent model when the mentions had to be re-derived.
func (m Model) ApplyEdit(next string, sel Selection, fromTrigger bool) (Model, Change, error) {
	res, recErr := reconcile.Reconcile(reconcile.Input{
		Prev:         m.text,
		Next:         next,
		Selection:    sel,
		FromTrigger:  fromTrigger,
		Ranges:       m.ranges,
		DisplayField: m.opts.displayField,
	})

	ch := Change{
		Removed:  res.Removed,
		Edit:     res.Edit.Kind,
		Fallback: res.Fallback,
	}
	ch.Redraw = res.Edit.Kind != reconcile.KindNone || !res.Ranges.Equal(m.ranges)
	m.text, m.ranges = res.Text, res.Ranges

	if res.Edit.Kind == reconcile.KindNone {
		m.selection = sel.Clamp(m.Len())
		m.tracker, ch.Events = m.tracker.ObserveCaret(m.text, m.selection.End)
	} else {
		m.selection = Caret(res.Caret)
		m.tracker, ch.Events = m.tracker.Observe(m.text, res.Caret)
	}
	ch.Selection = m.selection
	return m, ch, recErr
}

// MoveSelection records a host selection change. Selections that cut into a
// mention are adjusted so mentions stay atomic; the adjusted selection is in
// Change.Selection. A caret move can close the tracking session, a range
// selection always does.
func (m Model) MoveSelection(sel Selection) (Model, Change) {
	sel = sel.Clamp(m.Len())
	expanded := selection.Expand(sel, m.selection, m.ranges)

	var ch Change
	if expanded.IsCaret() {
		m.tracker, ch.Events = m.tracker.ObserveCaret(m.text, expanded.End)
	} else {
		m.tracker, ch.Events = m.tracker.Cancel()
	}
	m.selection = expanded
	ch.Selection = expanded
	return m, ch
}

// Accept replaces the open trigger and its keyword with a mention of entity.
func (m Model) Accept(entity Entity) (Model, Change, error) {
	state := m.tracker.State()
	if !state.Active {
		return m, Change{Selection: m.selection}, ErrNotTracking
	}
	res, err := reconcile.Accept(reconcile.AcceptInput{
		Text:         m.text,
		TriggerIndex: state.TriggerIndex,
		Entity:       entity,
		DisplayField: m.opts.displayField,
		Ranges:       m.ranges,
	})
	if err != nil {
		return m, Change{Selection: m.selection}, err
	}

	var ch Change
	m.tracker, ch.Events = m.tracker.Cancel()
	m.text, m.ranges = res.Text, res.Ranges
	m.selection = Caret(res.Caret)

	ch.Redraw = true
	ch.Edit = reconcile.KindReplace
	ch.Selection = m.selection
	return m, ch, nil
}

// OpenMentions inserts the trigger at the caret as if the host had typed it
// programmatically, which opens a session under either policy's rules.
func (m Model) OpenMentions() (Model, Change, error) {
	runes := []rune(m.text)
	at := m.selection.Clamp(len(runes)).End

	next := make([]rune, 0, len(runes)+1)
	next = append(next, runes[:at]...)
	next = append(next, m.tracker.Trigger())
	next = append(next, runes[at:]...)
	return m.ApplyEdit(string(next), Caret(at), true)
}

// CancelTracking closes an open session without touching the text.
func (m Model) CancelTracking() (Model, Change) {
	var ch Change
	m.tracker, ch.Events = m.tracker.Cancel()
	ch.Selection = m.selection
	return m, ch
}

// Untag drops the mention tags for entity id. The visible text is kept.
func (m Model) Untag(id string) (Model, Change) {
	var hit []Range
	for _, r := range m.ranges.Sorted() {
		if r.Entity.ID == id {
			hit = append(hit, r)
		}
	}
	ch := Change{Selection: m.selection}
	if len(hit) == 0 {
		return m, ch
	}
	m.ranges = m.ranges.DeleteAll(hit)
	ch.Redraw = true
	for _, r := range hit {
		ch.Removed = append(ch.Removed, r.Entity)
	}
	return m, ch
}

// Reset clears the text, the mentions, and any open session.
func (m Model) Reset() (Model, Change) {
	ch := Change{
		Redraw:  m.text != "" || !m.ranges.IsEmpty(),
		Removed: m.ranges.Entities(),
	}
	if len(ch.Removed) == 0 {
		ch.Removed = nil
	}
	m.tracker, ch.Events = m.tracker.Cancel()
	m.text, m.ranges = "", rangemap.Map{}
	m.selection = Caret(0)
	ch.Selection = m.selection
	return m, ch
}
