package loader

import (
	"fmt"
	"sort"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

// Entities flattens decoded documents into entities. A document may be a
// single object with an "id", a list of such objects, or an object holding
// exactly one list of them (e.g. TOML [[people]] tables).
func Entities(docs []any) ([]rangemap.Entity, error) {
	var out []rangemap.Entity
	for i, doc := range docs {
		items, err := entityItems(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		for j, item := range items {
			e, err := rangemap.EntityFromMap(item)
			if err != nil {
				return nil, fmt.Errorf("document %d, entity %d: %w", i+1, j+1, err)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func entityItems(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case map[string]any:
		if _, ok := v["id"]; ok {
			return []map[string]any{v}, nil
		}
		keys := make([]string, 0, len(v))
		for k, val := range v {
			if _, ok := val.([]any); ok {
				keys = append(keys, k)
			}
		}
		if len(keys) != 1 {
			sort.Strings(keys)
			return nil, fmt.Errorf("expected an entity or one list of entities, found lists %v", keys)
		}
		return entityItems(v[keys[0]])
	case []any:
		items := make([]map[string]any, 0, len(v))
		for i, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entity %d is %T, not an object", i+1, elem)
			}
			items = append(items, m)
		}
		return items, nil
	case []map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("expected an object or a list, got %T", doc)
	}
}

// LoadEntities reads entities from a file (or "-" for standard input).
func LoadEntities(path string) ([]rangemap.Entity, error) {
	docs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Entities(docs)
}

// ParseEntities reads entities from in-memory input of any supported format.
func ParseEntities(input string) ([]rangemap.Entity, error) {
	docs, err := LoadData(input)
	if err != nil {
		return nil, err
	}
	return Entities(docs)
}
