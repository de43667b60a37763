// Package navigator resolves field paths inside entity data, so settings like
// suggestions.detail_field can name nested values ("contact.email").
package navigator

import (
	"fmt"
	"reflect"
	"strings"
)

// Lookup walks root along path. An empty path returns root.
func Lookup(root any, path string) (any, error) {
	cur := root
	for _, node := range ParsePath(strings.TrimSpace(path)) {
		next, err := step(cur, node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

// LookupString returns the value at path formatted for display, or "" when
// the path does not resolve or names a nil value.
func LookupString(root any, path string) string {
	v, err := Lookup(root, path)
	if err != nil || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func step(cur any, node Node) (any, error) {
	switch n := node.(type) {
	case Field:
		return key(cur, n.Name)
	case QuotedKey:
		return key(cur, n.Name)
	case ArrayIndex:
		return index(cur, n.Index)
	}
	return nil, fmt.Errorf("unsupported path segment %T", node)
}

func key(cur any, name string) (any, error) {
	if m, ok := cur.(map[string]any); ok {
		v, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("key %q not found", name)
		}
		return v, nil
	}
	rv := reflect.ValueOf(cur)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot read key %q from %T", name, cur)
	}
	v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, fmt.Errorf("key %q not found", name)
	}
	return v.Interface(), nil
}

func index(cur any, i int) (any, error) {
	if s, ok := cur.([]any); ok {
		if i < 0 || i >= len(s) {
			return nil, fmt.Errorf("index %d out of range", i)
		}
		return s[i], nil
	}
	rv := reflect.ValueOf(cur)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot index %T", cur)
	}
	if i < 0 || i >= rv.Len() {
		return nil, fmt.Errorf("index %d out of range", i)
	}
	return rv.Index(i).Interface(), nil
}
