// Package selection keeps mentions atomic under selection: a selection that
// cuts into a mention is widened to cover it, or narrowed to drop it when the
// user is shrinking the selection.
package selection

import (
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Expand adjusts next so no mention is partially selected. prev is the
// selection the host reported before next; an edge that moved inward and
// landed inside a mention releases that mention instead of grabbing it.
// Carets and selections that touch no mention pass through with only their
// ends ordered. The result is always normalized.
func Expand(next, prev rangemap.Selection, ranges rangemap.Map) rangemap.Selection {
	sel := next.Normalize()
	if sel.IsCaret() || len(ranges.FindOverlapping(sel)) == 0 {
		return sel
	}
	prev = prev.Normalize()
	shrinkStart := !prev.IsCaret() && sel.Start > prev.Start
	shrinkEnd := !prev.IsCaret() && sel.End < prev.End

	out := adjust(sel, ranges, shrinkStart, shrinkEnd)
	if out.Start >= out.End {
		out = adjust(sel, ranges, false, false)
	}
	return out
}

func adjust(sel rangemap.Selection, ranges rangemap.Map, excludeStart, excludeEnd bool) rangemap.Selection {
	out := sel
	if r, ok := ranges.FindContaining(sel.Start); ok && r.Start < sel.Start {
		if excludeStart {
			out.Start = r.End + 1
		} else {
			out.Start = r.Start
		}
	}
	if r, ok := ranges.FindContaining(sel.End - 1); ok && r.End >= sel.End {
		if excludeEnd {
			out.End = r.Start
		} else {
			out.End = r.End + 1
		}
	}
	return out
}
