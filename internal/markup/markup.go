// Package markup converts between raw display text plus a range map and the
// canonical markup string that embeds mentions as @[display](id:id).
package markup

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// MentionPrefix is the visible prefix of every rendered mention.
const MentionPrefix = "@"

// tokenPattern matches one canonical mention token. Display values cannot
// contain brackets and ids cannot contain ')'.
var tokenPattern = regexp.MustCompile(`@\[([^\[\]]+)\]\(id:([^)]+)\)`)

// brokenTokenMarker in input without a single complete token means a token
// was cut short. Next to complete tokens it is literal text.
const brokenTokenMarker = "](id:"

// MalformedMarkupError is returned when canonical text carries a broken token
// and no complete one. The accompanying Document is the input as plain text.
type MalformedMarkupError struct {
	Offset int
	Input  string
}

func (e *MalformedMarkupError) Error() string {
	return fmt.Sprintf("malformed mention markup near byte %d", e.Offset)
}

// Document is raw display text plus the mentions tagged inside it.
type Document struct {
	Text   string
	Ranges rangemap.Map
}

// Codec renders and parses canonical markup using a display field.
type Codec struct {
	DisplayField string
}

// NewCodec returns a codec for displayField; empty means the default field.
func NewCodec(displayField string) Codec {
	if displayField == "" {
		displayField = rangemap.DefaultDisplayField
	}
	return Codec{DisplayField: displayField}
}

// Token renders a single mention token.
func Token(display, id string) string {
	return "@[" + display + "](id:" + id + ")"
}

// HasTokens reports whether s contains at least one canonical token.
func HasTokens(s string) bool {
	return tokenPattern.MatchString(s)
}

// ToCanonical walks ranges left to right and replaces each tagged span with its
// token. Literal text between ranges is copied verbatim.
func (c Codec) ToCanonical(text string, ranges rangemap.Map) string {
	if ranges.IsEmpty() {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	last := 0
	for _, r := range ranges.Sorted() {
		if r.Start < last || r.End >= len(runes) {
			continue
		}
		b.WriteString(string(runes[last:r.Start]))
		b.WriteString(Token(c.display(runes, r), r.Entity.ID))
		last = r.End + 1
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

// display prefers the entity's display field and falls back to the visible
// span without its prefix.
func (c Codec) display(runes []rune, r rangemap.Range) string {
	if d := r.Entity.Display(c.DisplayField); d != "" {
		return d
	}
	visible := string(runes[r.Start : r.End+1])
	return strings.TrimPrefix(visible, MentionPrefix)
}

// FromCanonical parses markup into display text and ranges. Text between
// tokens is copied verbatim, whatever it contains. Input with a broken token
// and nothing to recover returns a plain-text Document of the whole input
// together with a *MalformedMarkupError.
func (c Codec) FromCanonical(markup string) (Document, error) {
	matches := tokenPattern.FindAllStringSubmatchIndex(markup, -1)
	if len(matches) == 0 {
		if i := strings.Index(markup, brokenTokenMarker); i >= 0 {
			return plain(markup), &MalformedMarkupError{Offset: i, Input: markup}
		}
		return plain(markup), nil
	}
	var (
		b      strings.Builder
		ranges rangemap.Map
		offset int
		last   int
	)
	for _, m := range matches {
		literal := markup[last:m[0]]
		b.WriteString(literal)
		offset += utf8.RuneCountInString(literal)

		display := markup[m[2]:m[3]]
		id := markup[m[4]:m[5]]
		visible := MentionPrefix + display
		n := utf8.RuneCountInString(visible)
		next, err := ranges.Insert(rangemap.NewRange(offset, n, rangemap.NewEntity(id, c.DisplayField, display)))
		if err != nil {
			return plain(markup), fmt.Errorf("parse mention at byte %d: %w", m[0], err)
		}
		ranges = next
		b.WriteString(visible)
		offset += n
		last = m[1]
	}
	b.WriteString(markup[last:])
	return Document{Text: b.String(), Ranges: ranges}, nil
}

func plain(s string) Document {
	return Document{Text: s}
}

// ToCanonical renders with the default display field.
func ToCanonical(text string, ranges rangemap.Map) string {
	return NewCodec("").ToCanonical(text, ranges)
}

// FromCanonical parses with the default display field.
func FromCanonical(markup string) (Document, error) {
	return NewCodec("").FromCanonical(markup)
}
