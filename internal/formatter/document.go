// Package formatter renders mention documents for people and tools: a tree
// dump, Markdown-to-HTML with mention spans, styled terminal text, and a
// plain data shape for JSON/YAML output and CEL queries.
package formatter

import (
	"fmt"
	"unicode/utf8"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Mention is one tagged range in output form. End is inclusive.
type Mention struct {
	ID     string         `json:"id" yaml:"id" toml:"id"`
	Label  string         `json:"label" yaml:"label" toml:"label"`
	Start  int            `json:"start" yaml:"start" toml:"start"`
	End    int            `json:"end" yaml:"end" toml:"end"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// Document is the serializable view of a mention-aware text.
type Document struct {
	Text      string    `json:"text" yaml:"text" toml:"text"`
	Canonical string    `json:"canonical" yaml:"canonical" toml:"canonical"`
	Mentions  []Mention `json:"mentions" yaml:"mentions" toml:"mentions"`
}

// NewDocument builds the output view of text and its mentions.
func NewDocument(text, canonical string, ranges rangemap.Map) Document {
	runes := []rune(text)
	doc := Document{Text: text, Canonical: canonical, Mentions: []Mention{}}
	for _, r := range ranges.Sorted() {
		if r.End >= len(runes) {
			continue
		}
		doc.Mentions = append(doc.Mentions, Mention{
			ID:     r.Entity.ID,
			Label:  string(runes[r.Start : r.End+1]),
			Start:  r.Start,
			End:    r.End,
			Fields: r.Entity.Fields,
		})
	}
	return doc
}

// AsMap returns the document as plain maps and slices for expression
// evaluation.
func (d Document) AsMap() map[string]any {
	mentions := make([]any, len(d.Mentions))
	for i, m := range d.Mentions {
		fields := make(map[string]any, len(m.Fields))
		for k, v := range m.Fields {
			fields[k] = v
		}
		mentions[i] = map[string]any{
			"id":     m.ID,
			"label":  m.Label,
			"start":  m.Start,
			"end":    m.End,
			"fields": fields,
		}
	}
	return map[string]any{
		"text":      d.Text,
		"canonical": d.Canonical,
		"mentions":  mentions,
	}
}

// DocumentFromMap reads the shape written by AsMap (and by JSON/YAML output)
// back into a Document. Only text and each mention's id, start and end are
// required; a mention without end spans its label, or a single rune.
func DocumentFromMap(m map[string]any) (Document, error) {
	text, ok := m["text"].(string)
	if !ok {
		return Document{}, fmt.Errorf("document has no text")
	}
	doc := Document{Text: text, Mentions: []Mention{}}
	if c, ok := m["canonical"].(string); ok {
		doc.Canonical = c
	}
	raw, _ := m["mentions"].([]any)
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("mention %d is not an object", i)
		}
		id := ""
		if v, ok := obj["id"]; ok && v != nil {
			id = rangemap.FormatID(v)
		}
		if id == "" {
			return Document{}, fmt.Errorf("mention %d has no id", i)
		}
		start, ok := toInt(obj["start"])
		if !ok {
			return Document{}, fmt.Errorf("mention %d has no start", i)
		}
		mention := Mention{ID: id, Start: start}
		if label, ok := obj["label"].(string); ok {
			mention.Label = label
		}
		if end, ok := toInt(obj["end"]); ok {
			mention.End = end
		} else {
			mention.End = start + max(utf8.RuneCountInString(mention.Label), 1) - 1
		}
		if fields, ok := obj["fields"].(map[string]any); ok {
			mention.Fields = fields
		}
		doc.Mentions = append(doc.Mentions, mention)
	}
	return doc, nil
}

// Ranges rebuilds the range map. Overlapping mentions, or mentions that do
// not fit the text, are errors.
func (d Document) Ranges() (rangemap.Map, error) {
	var out rangemap.Map
	for _, m := range d.Mentions {
		fields := make(map[string]any, len(m.Fields))
		for k, v := range m.Fields {
			fields[k] = v
		}
		next, err := out.Insert(rangemap.NewRange(m.Start, m.End-m.Start+1, rangemap.Entity{ID: m.ID, Fields: fields}))
		if err != nil {
			return rangemap.Map{}, err
		}
		out = next
	}
	if err := out.Validate(utf8.RuneCountInString(d.Text)); err != nil {
		return rangemap.Map{}, err
	}
	return out, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
