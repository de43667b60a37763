//revive:disable:exported
package completion

import (
	"sort"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Provider supplies mention candidates for the keyword typed after a trigger.
// Implementations decide how a keyword matches; the Engine handles exclusion,
// ordering and limits.
type Provider interface {
	Candidates(keyword string, ctx Context) ([]Candidate, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(keyword string, ctx Context) ([]Candidate, error)

func (f ProviderFunc) Candidates(keyword string, ctx Context) ([]Candidate, error) {
	return f(keyword, ctx)
}

// Candidate is one suggestion.
type Candidate struct {
	Entity  rangemap.Entity // Entity to insert when accepted
	Display string          // Visible label, without the trigger
	Detail  string          // Secondary text (e.g. an email or team)
	Match   MatchKind       // How the keyword matched
	Score   int             // Relevance (higher = more relevant)
}

// Context carries the per-request settings.
type Context struct {
	// DisplayField names the entity field used for the label.
	DisplayField string

	// Exclude lists entity ids that must not be suggested, typically the ones
	// already mentioned.
	Exclude []string

	// Limit caps the result size; 0 means no limit.
	Limit int
}

// Engine wraps a Provider and adds exclusion, de-duplication and ranking.
type Engine struct {
	provider Provider
	log      logr.Logger
}

//revive:enable:exported

// NewEngine creates a completion engine over provider.
func NewEngine(provider Provider, log logr.Logger) *Engine {
	return &Engine{provider: provider, log: log}
}

// Suggest returns ranked candidates for keyword. Candidates are ordered by
// score, then label, then id; an entity appears at most once.
func (e *Engine) Suggest(keyword string, ctx Context) ([]Candidate, error) {
	raw, err := e.provider.Candidates(keyword, ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(ctx.Exclude))
	for _, id := range ctx.Exclude {
		excluded[id] = true
	}
	best := make(map[string]int, len(raw))
	out := make([]Candidate, 0, len(raw))
	for _, c := range raw {
		if excluded[c.Entity.ID] {
			continue
		}
		if i, ok := best[c.Entity.ID]; ok {
			if c.Score > out[i].Score {
				out[i] = c
			}
			continue
		}
		best[c.Entity.ID] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Display != out[j].Display {
			return out[i].Display < out[j].Display
		}
		return out[i].Entity.ID < out[j].Entity.ID
	})
	if ctx.Limit > 0 && len(out) > ctx.Limit {
		out = out[:ctx.Limit]
	}
	e.log.V(2).Info("suggestions", "keyword", keyword, "provided", len(raw), "returned", len(out))
	return out, nil
}
