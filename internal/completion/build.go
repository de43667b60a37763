package completion

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mentionx/internal/cel"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Settings selects how NewFromEntities wires an engine.
type Settings struct {
	DisplayField string
	Filter       string // CEL predicate over "_" (the entity) and "keyword"
	DetailField  string
	Logger       logr.Logger
}

// NewFromEntities builds an engine suggesting from entities.
func NewFromEntities(entities []rangemap.Entity, s Settings) (*Engine, error) {
	if s.Logger.GetSink() == nil {
		s.Logger = logr.Discard()
	}
	reg := NewEntityRegistry(s.DisplayField)
	reg.Load(entities)

	opts := []ProviderOption{WithDetailField(s.DetailField)}
	if s.Filter != "" {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		f, err := ev.NewFilter(s.Filter)
		if err != nil {
			return nil, fmt.Errorf("suggestion filter: %w", err)
		}
		opts = append(opts, WithFilter(f))
	}
	s.Logger.V(1).Info("suggestion engine ready", "entities", reg.Size(), "filter", s.Filter)
	return NewEngine(NewRegistryProvider(reg, opts...), s.Logger), nil
}
