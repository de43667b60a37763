package completion

import (
	"fmt"

	"github.com/oakwood-commons/mentionx/internal/cel"
	"github.com/oakwood-commons/mentionx/internal/navigator"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// RegistryProvider suggests entities from an EntityRegistry, optionally
// narrowed by a CEL filter.
type RegistryProvider struct {
	registry    *EntityRegistry
	filter      *cel.Filter
	detailField string
}

// ProviderOption configures a RegistryProvider.
type ProviderOption func(*RegistryProvider)

// WithFilter narrows candidates to entities the filter accepts.
func WithFilter(f *cel.Filter) ProviderOption {
	return func(p *RegistryProvider) {
		p.filter = f
	}
}

// WithDetailField fills Candidate.Detail from the named entity field. Dotted
// or bracketed names are resolved as paths into nested fields.
func WithDetailField(field string) ProviderOption {
	return func(p *RegistryProvider) {
		p.detailField = field
	}
}

// NewRegistryProvider creates a provider over registry.
func NewRegistryProvider(registry *EntityRegistry, opts ...ProviderOption) *RegistryProvider {
	p := &RegistryProvider{registry: registry}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Candidates scores every entity against keyword. Labels that miss every
// direct tier go through one fuzzy pass. Entities without a label cannot be
// mentioned and are skipped.
func (p *RegistryProvider) Candidates(keyword string, ctx Context) ([]Candidate, error) {
	field := ctx.DisplayField
	if field == "" {
		field = p.registry.DisplayField()
	}

	var (
		out      []Candidate
		leftover []rangemap.Entity
		labels   []string
	)
	for _, e := range p.registry.All() {
		label := e.Display(field)
		if label == "" {
			continue
		}
		kind, score := Score(keyword, label, e.ID)
		if kind == MatchNone {
			leftover = append(leftover, e)
			labels = append(labels, label)
			continue
		}
		c, ok, err := p.candidate(e, label, keyword, kind, score)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}

	fuzzyScores := FuzzyScores(keyword, labels)
	for i, e := range leftover {
		score, matched := fuzzyScores[i]
		if !matched {
			continue
		}
		c, ok, err := p.candidate(e, labels[i], keyword, MatchFuzzy, score)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *RegistryProvider) candidate(e rangemap.Entity, label, keyword string, kind MatchKind, score int) (Candidate, bool, error) {
	if p.filter != nil {
		ok, err := p.filter.Match(e.AsMap(), keyword)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("filter %s on entity %s: %w", p.filter, e.ID, err)
		}
		if !ok {
			return Candidate{}, false, nil
		}
	}
	return Candidate{
		Entity:  e,
		Display: label,
		Detail:  p.detail(e),
		Match:   kind,
		Score:   score,
	}, true, nil
}

func (p *RegistryProvider) detail(e rangemap.Entity) string {
	switch {
	case p.detailField == "":
		return ""
	case navigator.IsPath(p.detailField):
		if v := e.Display(p.detailField); v != "" {
			return v
		}
		return navigator.LookupString(e.Fields, p.detailField)
	}
	return e.Display(p.detailField)
}
