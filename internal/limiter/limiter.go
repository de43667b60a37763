// Package limiter pages through result lists: suggestions, and list or map
// results of queries.
package limiter

import (
	"fmt"
	"sort"
)

// Config holds the paging parameters.
type Config struct {
	Limit  int // keep at most this many items (0 = unlimited)
	Offset int // skip the first N items
	Tail   int // keep only the last N items; excludes Limit and ignores Offset
}

// Validate rejects negative values and Limit combined with Tail.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any paging is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// bounds returns the [start, end) window over n items.
func (c Config) bounds(n int) (int, int) {
	if c.Tail > 0 {
		return max(n-c.Tail, 0), n
	}
	start := min(c.Offset, n)
	end := n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}

// Slice returns the window of items. The result shares the input's backing
// array.
func Slice[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.bounds(len(items))
	return items[start:end]
}

// Apply pages a decoded value: lists by position, maps by sorted key. Other
// values are returned unchanged.
func (c Config) Apply(data any) any {
	if !c.IsActive() {
		return data
	}
	switch v := data.(type) {
	case []any:
		return Slice(c, v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any)
		for _, k := range Slice(c, keys) {
			out[k] = v[k]
		}
		return out
	default:
		return data
	}
}
