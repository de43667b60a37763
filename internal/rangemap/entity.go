package rangemap

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultDisplayField is the entity field used for the visible label when the
// caller does not choose one.
const DefaultDisplayField = "name"

// Entity is the caller-supplied payload a mention points at. ID must be stable;
// Fields carries whatever the caller wants, including the display field.
type Entity struct {
	ID     string
	Fields map[string]any
}

// NewEntity builds an entity with a single display field set.
func NewEntity(id, displayField, display string) Entity {
	if displayField == "" {
		displayField = DefaultDisplayField
	}
	return Entity{
		ID:     id,
		Fields: map[string]any{displayField: display},
	}
}

// EntityFromMap converts loaded data (JSON/YAML/TOML objects) into an Entity.
// The id is read from "id"; numeric ids are rendered without a fractional part
// when they are integral.
func EntityFromMap(m map[string]any) (Entity, error) {
	raw, ok := m["id"]
	if !ok || raw == nil {
		return Entity{}, fmt.Errorf("entity has no id")
	}
	id := FormatID(raw)
	if id == "" {
		return Entity{}, fmt.Errorf("entity has an empty id")
	}
	fields := make(map[string]any, len(m))
	for k, v := range m {
		fields[k] = v
	}
	return Entity{ID: id, Fields: fields}, nil
}

// FormatID renders an id value as its canonical string form.
func FormatID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) && math.Abs(t) < 1<<53 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// Display returns the value of the display field, or "" when it is missing.
func (e Entity) Display(field string) string {
	if field == "" {
		field = DefaultDisplayField
	}
	v, ok := e.Fields[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Field returns a raw field value.
func (e Entity) Field(name string) (any, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// AsMap returns the entity as a plain map including its id, suitable for
// expression evaluation and serialization.
func (e Entity) AsMap() map[string]any {
	out := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["id"] = e.ID
	return out
}

func (e Entity) String() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("{id:")
	b.WriteString(e.ID)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s:%v", k, e.Fields[k])
	}
	b.WriteString("}")
	return b.String()
}
