package navigator

import (
	"strconv"
	"strings"
)

// Node is one parsed segment of a field path such as
// contact.emails[0]["work-addr"].
type Node interface{}

// Field is a dotted field name.
type Field struct {
	Name string
}

// QuotedKey is a field written as ["key"], for names holding dots or dashes.
type QuotedKey struct {
	Name string
}

// ArrayIndex is a list index like [0].
type ArrayIndex struct {
	Index int
}

// ParsePath splits a path into nodes. An unterminated bracket ends parsing.
func ParsePath(input string) []Node {
	var nodes []Node
	i := 0
	for i < len(input) {
		switch input[i] {
		case '.':
			i++
			continue
		case '[':
			end := strings.IndexByte(input[i:], ']')
			if end == -1 {
				return nodes
			}
			segment := input[i+1 : i+end]
			switch {
			case len(segment) >= 2 && strings.HasPrefix(segment, `"`) && strings.HasSuffix(segment, `"`):
				nodes = append(nodes, QuotedKey{Name: segment[1 : len(segment)-1]})
			default:
				if n, err := strconv.Atoi(segment); err == nil {
					nodes = append(nodes, ArrayIndex{Index: n})
				} else {
					nodes = append(nodes, Field{Name: segment})
				}
			}
			i += end + 1
			continue
		}
		j := i
		for j < len(input) && input[j] != '.' && input[j] != '[' {
			j++
		}
		nodes = append(nodes, Field{Name: input[i:j]})
		i = j
	}
	return nodes
}

// ReconstructPath writes nodes back in canonical path form.
func ReconstructPath(nodes []Node) string {
	var b strings.Builder
	for idx, n := range nodes {
		switch v := n.(type) {
		case Field:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v.Name)
		case QuotedKey:
			b.WriteString(`["`)
			b.WriteString(v.Name)
			b.WriteString(`"]`)
		case ArrayIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// IsPath reports whether name needs path resolution rather than a plain key
// lookup.
func IsPath(name string) bool {
	return strings.ContainsAny(name, ".[")
}
