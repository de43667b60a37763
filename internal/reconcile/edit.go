package reconcile

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Kind classifies an edit.
type Kind int

const (
	KindNone        Kind = iota // texts are identical
	KindInsert                  // runes added at one offset
	KindPointDelete             // one rune removed at a caret
	KindSpanDelete              // a run removed, or a selection deleted
	KindReplace                 // a run removed and another inserted in its place
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInsert:
		return "insert"
	case KindPointDelete:
		return "point-delete"
	case KindSpanDelete:
		return "span-delete"
	case KindReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Edit is one contiguous change, in rune offsets of the previous text.
type Edit struct {
	Kind     Kind
	At       int
	Deleted  int
	Inserted int
}

// Delta is the change in text length.
func (e Edit) Delta() int {
	return e.Inserted - e.Deleted
}

// editFromHint trusts the post-edit selection and verifies it against both
// snapshots: the prefix before the edit and the suffix after it must match.
func editFromHint(prev, next []rune, sel rangemap.Selection) (Edit, bool) {
	if len(next) >= len(prev) {
		added := len(next) - len(prev)
		if added == 0 {
			return Edit{}, false
		}
		end := sel.End
		at := end - added
		if at < 0 || !equalRunes(next[:at], prev[:at]) || !equalRunes(next[end:], prev[at:]) {
			return Edit{}, false
		}
		return Edit{Kind: KindInsert, At: at, Inserted: added}, true
	}

	deleted := len(prev) - len(next)
	at := sel.Start
	if at+deleted > len(prev) || !equalRunes(next[:at], prev[:at]) || !equalRunes(next[at:], prev[at+deleted:]) {
		return Edit{}, false
	}
	kind := KindSpanDelete
	if sel.IsCaret() && deleted == 1 {
		kind = KindPointDelete
	}
	return Edit{Kind: kind, At: at, Deleted: deleted}, true
}

// editFromDiff recovers the edit from the snapshots alone. Semantic cleanup
// folds short coincidental equalities into their neighbours so a retyped word
// counts as one change.
func editFromDiff(prev, next string) (Edit, error) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(prev, next, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var (
		edit   Edit
		hunks  int
		pos    int
		inHunk bool
	)
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			inHunk = false
			pos += n
		case diffmatchpatch.DiffDelete:
			if !inHunk {
				hunks++
				inHunk = true
				if hunks == 1 {
					edit.At = pos
				}
			}
			if hunks == 1 {
				edit.Deleted += n
			}
			pos += n
		case diffmatchpatch.DiffInsert:
			if !inHunk {
				hunks++
				inHunk = true
				if hunks == 1 {
					edit.At = pos
				}
			}
			if hunks == 1 {
				edit.Inserted += n
			}
		}
	}

	switch {
	case hunks == 0:
		return Edit{Kind: KindNone}, nil
	case hunks > 1:
		return Edit{}, &UnreconcilableEditError{Hunks: hunks, FirstChange: edit.At}
	}

	switch {
	case edit.Deleted == 0:
		edit.Kind = KindInsert
	case edit.Inserted == 0 && edit.Deleted == 1:
		edit.Kind = KindPointDelete
	case edit.Inserted == 0:
		edit.Kind = KindSpanDelete
	default:
		edit.Kind = KindReplace
	}
	return edit, nil
}

// CaretAfter derives the post-edit caret from two snapshots: the end of the
// inserted run, or the offset of the removed one. ok is false when the texts
// are identical or the change is not contiguous.
func CaretAfter(prev, next string) (caret int, ok bool) {
	edit, err := editFromDiff(prev, next)
	if err != nil || edit.Kind == KindNone {
		return 0, false
	}
	return edit.At + edit.Inserted, true
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func commonPrefix(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
