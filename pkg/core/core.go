// Package core is the library API behind the mentionx commands: it parses
// canonical markup into documents, writes documents back, evaluates CEL
// against them, and renders them.
package core

import (
	"fmt"

	"github.com/oakwood-commons/mentionx/internal/cel"
	"github.com/oakwood-commons/mentionx/internal/formatter"
	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/pkg/loader"
	"github.com/oakwood-commons/mentionx/pkg/mention"
)

// Document is display text with its mentions. Mention ends are inclusive.
type Document = formatter.Document

// Mention is one tagged range of a Document.
type Mention = formatter.Mention

// Evaluator evaluates expressions against a root value.
type Evaluator interface {
	Evaluate(expr string, root any) (any, error)
}

// Formatter renders documents for people.
type Formatter interface {
	Tree(doc Document) string
	HTML(doc Document) (string, error)
}

// Engine bundles the codec, evaluator and formatter.
type Engine struct {
	Evaluator    Evaluator
	Formatter    Formatter
	DisplayField string
}

// Option configures the Engine.
type Option func(*Engine)

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) {
		c.Evaluator = e
	}
}

// WithFormatter sets a custom formatter.
func WithFormatter(f Formatter) Option {
	return func(c *Engine) {
		c.Formatter = f
	}
}

// WithDisplayField sets the entity field written into canonical tokens.
func WithDisplayField(field string) Option {
	return func(c *Engine) {
		c.DisplayField = field
	}
}

// New creates an Engine with defaults: the CEL evaluator, the built-in
// formatter and the "name" display field.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.DisplayField == "" {
		engine.DisplayField = mention.DefaultDisplayField
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	if engine.Formatter == nil {
		engine.Formatter = defaultFormatter{}
	}
	return engine, nil
}

// LoadEntities reads mentionable entities from a YAML, JSON, NDJSON or TOML
// file; "-" reads standard input.
func LoadEntities(path string) ([]mention.Entity, error) {
	return loader.LoadEntities(path)
}

// Parse decodes canonical markup. Malformed markup yields a plain-text
// Document together with a *mention.MalformedMarkupError.
func (e *Engine) Parse(canonical string) (Document, error) {
	d, err := markup.NewCodec(e.DisplayField).FromCanonical(canonical)
	return formatter.NewDocument(d.Text, canonical, d.Ranges), err
}

// Encode writes doc as canonical markup. Overlapping mentions, or mentions
// outside the text, are errors.
func (e *Engine) Encode(doc Document) (string, error) {
	ranges, err := doc.Ranges()
	if err != nil {
		return "", err
	}
	return markup.NewCodec(e.DisplayField).ToCanonical(doc.Text, ranges), nil
}

// Evaluate runs the evaluator against root.
func (e *Engine) Evaluate(expr string, root any) (any, error) {
	if e == nil || e.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.Evaluate(expr, root)
}

// Query evaluates expr with the document bound to "_" as
// {text, canonical, mentions}.
func (e *Engine) Query(expr string, doc Document) (any, error) {
	return e.Evaluate(expr, doc.AsMap())
}

// Tree renders doc as an indented tree.
func (e *Engine) Tree(doc Document) string {
	e.ensureFormatter()
	return e.Formatter.Tree(doc)
}

// HTML renders doc as HTML with mention spans.
func (e *Engine) HTML(doc Document) (string, error) {
	e.ensureFormatter()
	return e.Formatter.HTML(doc)
}

type defaultFormatter struct{}

func (defaultFormatter) Tree(doc Document) string {
	return formatter.FormatAsTree(doc, formatter.TreeOptions{})
}

func (defaultFormatter) HTML(doc Document) (string, error) {
	ranges, err := doc.Ranges()
	if err != nil {
		return "", err
	}
	return string(formatter.RenderHTML(markup.Spans(doc.Text, ranges), formatter.HTMLOptions{})), nil
}

func (e *Engine) ensureFormatter() {
	if e.Formatter == nil {
		e.Formatter = defaultFormatter{}
	}
}
