// Package intellisense exposes the mention suggestion engine to programs that
// host their own text widget.
//
// # Basic Usage
//
// Build a Suggester over the entities that can be mentioned, then ask it for
// candidates whenever the editor's tracking state changes:
//
//	s, err := intellisense.New(people, intellisense.Options{Filter: `!_.away`})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	candidates, err := s.ForModel(editor.Model())
//	for _, c := range candidates {
//		fmt.Println(intellisense.FormatOneLiner('@', c))
//	}
//
// Accepting a candidate is editor.OnSuggestionAccepted(c.Entity).
package intellisense

import (
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mentionx/internal/completion"
	"github.com/oakwood-commons/mentionx/pkg/mention"
)

// Provider supplies candidates for a keyword. Custom providers (a directory
// service, a database) can be passed to NewWithProvider.
type Provider = completion.Provider

// ProviderFunc adapts a function to Provider.
type ProviderFunc = completion.ProviderFunc

// Candidate is one suggestion.
type Candidate = completion.Candidate

// Context carries the per-request settings a Provider sees.
type Context = completion.Context

// MatchKind tells how a keyword matched a candidate.
type MatchKind = completion.MatchKind

// Options configures New.
type Options struct {
	// DisplayField names the entity field shown as the label. Default "name".
	DisplayField string
	// Filter is a CEL predicate over the entity ("_") and the typed "keyword".
	Filter string
	// DetailField fills Candidate.Detail; dotted paths reach nested fields.
	DetailField string
	// Limit caps each result; 0 means no limit.
	Limit int
	// KeepMentioned also suggests entities the text already mentions.
	KeepMentioned bool
	Logger        logr.Logger
}

// Suggester ranks candidates for mention keywords.
type Suggester struct {
	engine *completion.Engine
	opts   Options
}

// New builds a Suggester over a fixed entity list.
func New(entities []mention.Entity, opts Options) (*Suggester, error) {
	if opts.DisplayField == "" {
		opts.DisplayField = mention.DefaultDisplayField
	}
	engine, err := completion.NewFromEntities(entities, completion.Settings{
		DisplayField: opts.DisplayField,
		Filter:       opts.Filter,
		DetailField:  opts.DetailField,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Suggester{engine: engine, opts: opts}, nil
}

// NewWithProvider builds a Suggester over a custom Provider. Options.Filter
// and Options.DetailField are up to the provider and ignored here.
func NewWithProvider(p Provider, opts Options) *Suggester {
	if opts.DisplayField == "" {
		opts.DisplayField = mention.DefaultDisplayField
	}
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	return &Suggester{engine: completion.NewEngine(p, lgr), opts: opts}
}

// Suggest ranks candidates for keyword, leaving out the exclude ids.
func (s *Suggester) Suggest(keyword string, exclude ...string) ([]Candidate, error) {
	return s.engine.Suggest(keyword, completion.Context{
		DisplayField: s.opts.DisplayField,
		Exclude:      exclude,
		Limit:        s.opts.Limit,
	})
}

// ForModel suggests for the model's open mention session, leaving out
// entities already mentioned unless KeepMentioned is set. It returns nil when
// no session is open.
func (s *Suggester) ForModel(m mention.Model) ([]Candidate, error) {
	state := m.Tracking()
	if !state.Active {
		return nil, nil
	}
	var exclude []string
	if !s.opts.KeepMentioned {
		for _, e := range m.Mentions() {
			exclude = append(exclude, e.ID)
		}
	}
	return s.Suggest(state.Keyword, exclude...)
}

// FormatOneLiner renders a candidate as "<prefix>label  detail".
func FormatOneLiner(prefix rune, c Candidate) string {
	return completion.FormatOneLiner(prefix, c)
}
