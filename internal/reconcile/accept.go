package reconcile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// AcceptInput describes a suggestion chosen while a trigger is open.
type AcceptInput struct {
	Text         string
	TriggerIndex int
	Entity       rangemap.Entity
	DisplayField string
	Ranges       rangemap.Map
}

// AcceptResult is the text and map after the mention was inserted.
type AcceptResult struct {
	Text   string
	Range  rangemap.Range
	Ranges rangemap.Map
	// Rehydrated lists mentions that sat in the replaced keyword run and were
	// written back after the new mention.
	Rehydrated []rangemap.Range
	Caret      int
}

// ValidateEntity checks that an entity can be written as a canonical token.
func ValidateEntity(e rangemap.Entity, displayField string) error {
	display := e.Display(displayField)
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidEntity)
	case strings.Contains(e.ID, ")"):
		return fmt.Errorf("%w: id %q contains ')'", ErrInvalidEntity, e.ID)
	case display == "":
		return fmt.Errorf("%w: entity %s has no %q value", ErrInvalidEntity, e.ID, displayField)
	case strings.ContainsAny(display, "[]"):
		return fmt.Errorf("%w: display %q contains a bracket", ErrInvalidEntity, display)
	}
	return nil
}

// Accept replaces the trigger and the keyword typed after it with
// "@display " and tags the new span.
//
// Text before the trigger keeps its offsets: only trailing blanks are trimmed
// and a single space is added when the prefix is not empty and does not end a
// line. The keyword run ends at the first whitespace run, which is consumed.
// Mentions caught inside that run are written back after the new mention.
// Everything after it shifts by the net change in length.
func Accept(in AcceptInput) (AcceptResult, error) {
	runes := []rune(in.Text)
	if in.TriggerIndex < 0 || in.TriggerIndex >= len(runes) {
		return AcceptResult{}, fmt.Errorf("%w: %d not in text of length %d", ErrTriggerOutOfRange, in.TriggerIndex, len(runes))
	}
	if err := ValidateEntity(in.Entity, in.DisplayField); err != nil {
		return AcceptResult{}, err
	}

	trimEnd := in.TriggerIndex
	for trimEnd > 0 && isBlank(runes[trimEnd-1]) {
		trimEnd--
	}
	initial := append([]rune{}, runes[:trimEnd]...)
	if trimEnd > 0 && runes[trimEnd-1] != '\n' {
		initial = append(initial, ' ')
	}

	remStart := in.TriggerIndex + 1
	for remStart < len(runes) && !unicode.IsSpace(runes[remStart]) {
		remStart++
	}
	for remStart < len(runes) && unicode.IsSpace(runes[remStart]) {
		remStart++
	}
	// A caught mention that runs past the keyword is consumed whole.
	caught := in.Ranges.FindOverlapping(rangemap.Selection{Start: trimEnd, End: remStart})
	for len(caught) > 0 && caught[len(caught)-1].End >= remStart {
		remStart = caught[len(caught)-1].End + 1
		for remStart < len(runes) && unicode.IsSpace(runes[remStart]) {
			remStart++
		}
		caught = in.Ranges.FindOverlapping(rangemap.Selection{Start: trimEnd, End: remStart})
	}
	remainder := runes[remStart:]

	mention := []rune(markup.MentionPrefix + in.Entity.Display(in.DisplayField))

	out := make([]rune, 0, len(initial)+len(mention)+1+len(remainder))
	out = append(out, initial...)
	added := rangemap.NewRange(len(out), len(mention), in.Entity)
	out = append(out, mention...)
	out = append(out, ' ')

	rehydrated := make([]rangemap.Range, 0, len(caught))
	for _, r := range caught {
		visible := runes[r.Start : r.End+1]
		rehydrated = append(rehydrated, rangemap.NewRange(len(out), len(visible), r.Entity))
		out = append(out, visible...)
		out = append(out, ' ')
	}
	out = append(out, remainder...)

	delta := len(out) - len(runes)
	ranges := in.Ranges.DeleteAll(caught).Shift(remStart, delta)

	ranges, err := ranges.Insert(added)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("insert mention %s: %w", in.Entity.ID, err)
	}
	for _, r := range rehydrated {
		if ranges, err = ranges.Insert(r); err != nil {
			return AcceptResult{}, fmt.Errorf("restore mention %s: %w", r.Entity.ID, err)
		}
	}

	return AcceptResult{
		Text:       string(out),
		Range:      added,
		Ranges:     ranges,
		Rehydrated: rehydrated,
		Caret:      added.End + 2,
	}, nil
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}
