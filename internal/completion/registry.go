package completion

import (
	"sort"
	"strings"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// EntityRegistry holds the entities that can be mentioned. Entities are
// deduplicated by id and listed in label order.
type EntityRegistry struct {
	displayField string
	entities     map[string]rangemap.Entity
	ordered      []string // ids sorted by label, then id
}

// NewEntityRegistry creates an empty registry labelling entities by
// displayField.
func NewEntityRegistry(displayField string) *EntityRegistry {
	if displayField == "" {
		displayField = rangemap.DefaultDisplayField
	}
	return &EntityRegistry{
		displayField: displayField,
		entities:     make(map[string]rangemap.Entity),
	}
}

// DisplayField returns the field used for labels.
func (r *EntityRegistry) DisplayField() string { return r.displayField }

// Load replaces the registry contents. When an id repeats, the entry with
// more fields wins.
func (r *EntityRegistry) Load(entities []rangemap.Entity) {
	r.entities = make(map[string]rangemap.Entity, len(entities))
	for _, e := range entities {
		if existing, ok := r.entities[e.ID]; ok && len(existing.Fields) >= len(e.Fields) {
			continue
		}
		r.entities[e.ID] = e
	}
	r.reindex()
}

// Add inserts or replaces a single entity.
func (r *EntityRegistry) Add(e rangemap.Entity) {
	r.entities[e.ID] = e
	r.reindex()
}

func (r *EntityRegistry) reindex() {
	r.ordered = r.ordered[:0]
	for id := range r.entities {
		r.ordered = append(r.ordered, id)
	}
	sort.Slice(r.ordered, func(i, j int) bool {
		a, b := r.label(r.ordered[i]), r.label(r.ordered[j])
		if a != b {
			return a < b
		}
		return r.ordered[i] < r.ordered[j]
	})
}

func (r *EntityRegistry) label(id string) string {
	return strings.ToLower(r.entities[id].Display(r.displayField))
}

// Get returns the entity with id, or nil.
func (r *EntityRegistry) Get(id string) *rangemap.Entity {
	if e, ok := r.entities[id]; ok {
		return &e
	}
	return nil
}

// All returns every entity in label order.
func (r *EntityRegistry) All() []rangemap.Entity {
	out := make([]rangemap.Entity, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, r.entities[id])
	}
	return out
}

// Search returns entities whose label or id contains query, ignoring case.
func (r *EntityRegistry) Search(query string) []rangemap.Entity {
	if query == "" {
		return r.All()
	}
	query = strings.ToLower(query)
	var out []rangemap.Entity
	for _, id := range r.ordered {
		if strings.Contains(r.label(id), query) || strings.Contains(strings.ToLower(id), query) {
			out = append(out, r.entities[id])
		}
	}
	return out
}

// Size returns the number of unique entities.
func (r *EntityRegistry) Size() int {
	return len(r.entities)
}
