package mention

import (
	"github.com/oakwood-commons/mentionx/internal/reconcile"
)

// SelectionSource supplies the post-edit selection for a text change when the
// host does not pass one.
type SelectionSource interface {
	PostEditSelection(prev, next string) (Selection, bool)
}

// PushSelection is for hosts that report selection changes as they happen.
// The Editor records every selection it is told about; the last one is used
// for the next text change.
type PushSelection struct {
	sel Selection
	set bool
}

// Push records sel.
func (p *PushSelection) Push(sel Selection) {
	p.sel, p.set = sel, true
}

// PostEditSelection returns the last pushed selection.
func (p *PushSelection) PostEditSelection(_, _ string) (Selection, bool) {
	return p.sel, p.set
}

// PullSelection is for hosts that cannot report a selection at all. The caret
// is recovered by diffing the two snapshots.
type PullSelection struct{}

// PostEditSelection places the caret after the inserted run, or where the
// removed run was.
func (PullSelection) PostEditSelection(prev, next string) (Selection, bool) {
	caret, ok := reconcile.CaretAfter(prev, next)
	if !ok {
		return Selection{}, false
	}
	return Caret(caret), true
}

type pusher interface {
	Push(Selection)
}
