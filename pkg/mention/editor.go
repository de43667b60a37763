package mention

import (
	"errors"

	"github.com/go-logr/logr"
)

// Editor drives a Model from host events and reports every change through a
// Notifier. It is not safe for concurrent use; calls from inside a
// notification fail with ErrReentrantCall.
type Editor struct {
	model    Model
	notifier Notifier
	source   SelectionSource
	log      logr.Logger
	busy     bool
}

// NewEditor builds an editor over an empty model.
func NewEditor(opts ...Option) (*Editor, error) {
	m, err := New(opts...)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		model:    m,
		notifier: m.opts.notifier,
		source:   m.opts.source,
		log:      m.opts.logger,
	}
	if e.notifier == nil {
		e.notifier = NotifierFuncs{}
	}
	if e.source == nil {
		e.source = &PushSelection{}
	}
	return e, nil
}

// Model returns the current state.
func (e *Editor) Model() Model { return e.model }

// SetInitialCanonicalText loads markup, replacing the current state.
func (e *Editor) SetInitialCanonicalText(canonical string) error {
	return e.run(func(m Model) (Model, Change, error) {
		return m.SetCanonicalText(canonical)
	})
}

// OnTextChanged reconciles a change whose post-edit selection the host knows.
func (e *Editor) OnTextChanged(prev, next string, sel Selection) error {
	return e.run(func(m Model) (Model, Change, error) {
		e.checkPrev(m, prev)
		return m.ApplyEdit(next, sel, false)
	})
}

// OnTextInput reconciles a change and takes the selection from the editor's
// SelectionSource. Without one the caret is assumed at the end of next.
func (e *Editor) OnTextInput(prev, next string) error {
	return e.run(func(m Model) (Model, Change, error) {
		e.checkPrev(m, prev)
		sel, ok := e.source.PostEditSelection(m.Text(), next)
		if !ok {
			sel = Caret(len([]rune(next)))
		}
		return m.ApplyEdit(next, sel, false)
	})
}

// OnSelectionChanged records a host selection and returns the selection the
// host should show, which differs when a mention was cut.
func (e *Editor) OnSelectionChanged(sel Selection) (Selection, error) {
	err := e.run(func(m Model) (Model, Change, error) {
		next, ch := m.MoveSelection(sel)
		return next, ch, nil
	})
	if err != nil {
		return e.model.Selection(), err
	}
	// publish pushed the adjusted selection. One past the end of the text
	// belongs to a change the host has not reported yet and is kept as sent.
	if p, ok := e.source.(pusher); ok && aheadOfText(sel, e.model.Len()) {
		p.Push(sel)
	}
	return e.model.Selection(), nil
}

// OnSuggestionAccepted inserts entity at the open trigger.
func (e *Editor) OnSuggestionAccepted(entity Entity) error {
	return e.run(func(m Model) (Model, Change, error) {
		return m.Accept(entity)
	})
}

// OnResetRequested clears everything, as after a message is sent.
func (e *Editor) OnResetRequested() error {
	return e.run(func(m Model) (Model, Change, error) {
		next, ch := m.Reset()
		return next, ch, nil
	})
}

// OpenMentions inserts the trigger at the caret and opens a session.
func (e *Editor) OpenMentions() error {
	return e.run(func(m Model) (Model, Change, error) {
		return m.OpenMentions()
	})
}

// CancelTracking closes an open session.
func (e *Editor) CancelTracking() error {
	return e.run(func(m Model) (Model, Change, error) {
		next, ch := m.CancelTracking()
		return next, ch, nil
	})
}

// run applies op and publishes the change. Errors the model recovered from
// are logged and swallowed; the rest leave the state untouched.
func (e *Editor) run(op func(Model) (Model, Change, error)) error {
	if e.busy {
		return ErrReentrantCall
	}
	e.busy = true
	defer func() { e.busy = false }()

	next, ch, err := op(e.model)
	if err != nil {
		var unreconcilable *UnreconcilableEditError
		var malformed *MalformedMarkupError
		switch {
		case errors.As(err, &unreconcilable):
			e.log.V(1).Info("edit re-derived from scratch", "hunks", unreconcilable.Hunks, "firstChange", unreconcilable.FirstChange, "removed", len(ch.Removed))
		case errors.As(err, &malformed):
			e.log.V(1).Info("canonical text loaded as plain text", "offset", malformed.Offset)
		default:
			return err
		}
	}
	e.publish(next, ch)
	return nil
}

func (e *Editor) publish(next Model, ch Change) {
	prevCanonical := e.model.Canonical()
	e.model = next
	if p, ok := e.source.(pusher); ok {
		p.Push(ch.Selection)
	}

	if ch.Redraw {
		e.notifier.OnDisplayUpdate(next.Text(), next.Spans())
	}
	if canonical := next.Canonical(); canonical != prevCanonical {
		e.notifier.OnCanonicalTextChanged(canonical)
	}
	if len(ch.Removed) > 0 {
		e.log.V(1).Info("mentions removed", "count", len(ch.Removed), "edit", ch.Edit.String())
		e.notifier.OnMentionsRemoved(ch.Removed)
	}
	for _, ev := range ch.Events {
		e.notifier.OnTrackingStateChanged(ev.State)
	}
}

func aheadOfText(sel Selection, n int) bool {
	return sel.Start > n || sel.End > n
}

// checkPrev logs hosts whose idea of the text drifted from the model's. The
// model's text always wins.
func (e *Editor) checkPrev(m Model, prev string) {
	if prev != m.Text() {
		e.log.V(1).Info("host text differs from model text; using model text", "hostLen", len([]rune(prev)), "modelLen", m.Len())
	}
}
