package markup

import (
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Span is one segment of display text for the presentation layer.
type Span struct {
	Text      string `json:"text" yaml:"text"`
	IsMention bool   `json:"isMention" yaml:"isMention"`
	EntityID  string `json:"entityId,omitempty" yaml:"entityId,omitempty"`
}

// Spans splits text into plain and mention segments, left to right. Empty
// plain segments are omitted.
func Spans(text string, ranges rangemap.Map) []Span {
	runes := []rune(text)
	spans := make([]Span, 0, ranges.Len()*2+1)
	last := 0
	for _, r := range ranges.Sorted() {
		if r.Start < last || r.End >= len(runes) {
			continue
		}
		if r.Start > last {
			spans = append(spans, Span{Text: string(runes[last:r.Start])})
		}
		spans = append(spans, Span{
			Text:      string(runes[r.Start : r.End+1]),
			IsMention: true,
			EntityID:  r.Entity.ID,
		})
		last = r.End + 1
	}
	if last < len(runes) {
		spans = append(spans, Span{Text: string(runes[last:])})
	}
	return spans
}

// Join concatenates span text; it equals the source text.
func Join(spans []Span) string {
	n := 0
	for _, s := range spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range spans {
		b = append(b, s.Text...)
	}
	return string(b)
}
