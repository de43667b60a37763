package reconcile

import (
	"errors"

	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Input is one reported text change.
type Input struct {
	Prev string
	Next string
	// Selection is the host selection after the change.
	Selection rangemap.Selection
	// FromTrigger marks a change where the host inserted the trigger
	// character itself; its selection lags one rune behind.
	FromTrigger bool
	Ranges      rangemap.Map
	// DisplayField is used when the fallback path re-parses markup.
	DisplayField string
}

// Result is the repaired state after a change.
type Result struct {
	Text    string
	Ranges  rangemap.Map
	Removed []rangemap.Entity
	Edit    Edit
	// Caret is where the host caret belongs after the repair.
	Caret int
	// Fallback is set when the edit could not be classified and the range map
	// was re-derived.
	Fallback bool
}

// Reconcile classifies the change from in.Prev to in.Next and repairs the
// range map. The returned Result is always consistent with its Text. A non-nil
// error is an *UnreconcilableEditError describing why the fallback ran.
func Reconcile(in Input) (Result, error) {
	if in.Prev == in.Next {
		caret := in.Selection.Clamp(len([]rune(in.Next))).End
		return Result{Text: in.Next, Ranges: in.Ranges, Edit: Edit{Kind: KindNone}, Caret: caret}, nil
	}

	prev, next := []rune(in.Prev), []rune(in.Next)
	sel := in.Selection.Normalize()
	if in.FromTrigger {
		sel = sel.Shift(1)
	}
	sel = sel.Clamp(len(next))

	edit, ok := editFromHint(prev, next, sel)
	if !ok {
		var err error
		edit, err = editFromDiff(in.Prev, in.Next)
		if err != nil {
			return fallback(in, prev, next, err)
		}
	}
	return apply(in.Ranges, next, edit), nil
}

func apply(ranges rangemap.Map, next []rune, edit Edit) Result {
	var removed []rangemap.Range
	text := next

	switch edit.Kind {
	case KindInsert:
		ranges = ranges.Shift(edit.At, edit.Inserted)
		// Ranges starting before the insertion were not shifted, so one that
		// still reaches the insertion point now has foreign runes inside it.
		for _, r := range ranges.Ranges() {
			if r.Start < edit.At && edit.At <= r.End {
				ranges = ranges.Delete(r)
				removed = append(removed, r)
			}
		}

	case KindPointDelete:
		deleted := 1
		if r, ok := ranges.FindContaining(edit.At); ok {
			ranges = ranges.Delete(r)
			removed = append(removed, r)
			// next already lacks the rune at edit.At; the rest of the mention
			// now sits at [r.Start, r.End-1].
			text = splice(next, r.Start, r.End)
			deleted = r.Len()
			edit = Edit{Kind: KindPointDelete, At: r.Start, Deleted: deleted}
		}
		ranges = ranges.Shift(edit.At, -deleted)

	case KindSpanDelete, KindReplace:
		hit := ranges.FindOverlapping(rangemap.Selection{Start: edit.At, End: edit.At + edit.Deleted})
		ranges = ranges.DeleteAll(hit)
		removed = append(removed, hit...)
		ranges = ranges.Shift(edit.At, edit.Delta())
	}

	ranges, dropped := ranges.Prune(len(text))
	removed = append(removed, dropped...)

	return Result{
		Text:    string(text),
		Ranges:  ranges,
		Removed: entities(removed),
		Edit:    edit,
		Caret:   edit.At + edit.Inserted,
	}
}

// fallback re-derives the range map for edits with no usable shape. Markup in
// the new text is parsed; otherwise only mentions wholly before the first
// changed rune survive.
func fallback(in Input, prev, next []rune, cause error) (Result, error) {
	var unreconcilable *UnreconcilableEditError
	if !errors.As(cause, &unreconcilable) {
		unreconcilable = &UnreconcilableEditError{Hunks: 0, FirstChange: commonPrefix(prev, next)}
	}

	if markup.HasTokens(in.Next) {
		doc, err := markup.NewCodec(in.DisplayField).FromCanonical(in.Next)
		if err == nil {
			kept := make(map[string]bool, doc.Ranges.Len())
			for _, r := range doc.Ranges.Ranges() {
				kept[r.Entity.ID] = true
			}
			var removed []rangemap.Range
			for _, r := range in.Ranges.Sorted() {
				if !kept[r.Entity.ID] {
					removed = append(removed, r)
				}
			}
			return Result{
				Text:     doc.Text,
				Ranges:   doc.Ranges,
				Removed:  entities(removed),
				Edit:     Edit{Kind: KindReplace, At: 0, Deleted: len(prev), Inserted: len([]rune(doc.Text))},
				Caret:    len([]rune(doc.Text)),
				Fallback: true,
			}, unreconcilable
		}
	}

	first := commonPrefix(prev, next)
	ranges := in.Ranges
	var removed []rangemap.Range
	for _, r := range in.Ranges.Sorted() {
		if r.End >= first {
			ranges = ranges.Delete(r)
			removed = append(removed, r)
		}
	}
	ranges, dropped := ranges.Prune(len(next))
	removed = append(removed, dropped...)

	return Result{
		Text:     in.Next,
		Ranges:   ranges,
		Removed:  entities(removed),
		Edit:     Edit{Kind: KindReplace, At: first, Deleted: len(prev) - first, Inserted: len(next) - first},
		Caret:    in.Selection.Clamp(len(next)).End,
		Fallback: true,
	}, unreconcilable
}

// splice removes runes [from, to) from s.
func splice(s []rune, from, to int) []rune {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if from >= to {
		return s
	}
	out := make([]rune, 0, len(s)-(to-from))
	out = append(out, s[:from]...)
	return append(out, s[to:]...)
}

func entities(rs []rangemap.Range) []rangemap.Entity {
	if len(rs) == 0 {
		return nil
	}
	out := make([]rangemap.Entity, len(rs))
	for i, r := range rs {
		out[i] = r.Entity
	}
	return out
}
