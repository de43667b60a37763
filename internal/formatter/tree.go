package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

// TreeOptions controls tree output.
type TreeOptions struct {
	// NoFields hides entity fields under each mention.
	NoFields bool
	// MaxStringLen truncates long values; 0 or negative means no limit.
	MaxStringLen int
}

// FormatAsTree renders a document as an ASCII tree:
//
//	document
//	├── text: hi @Tim
//	├── canonical: hi @[Tim](id:1)
//	└── mentions
//	    └── [0] @Tim 3..6
//	        └── name: Tim
func FormatAsTree(doc Document, opts TreeOptions) string {
	tree := treeprint.NewWithRoot("document")
	tree.AddNode("text: " + truncate(quoteIfBlank(doc.Text), opts.MaxStringLen))
	tree.AddNode("canonical: " + truncate(quoteIfBlank(doc.Canonical), opts.MaxStringLen))

	if len(doc.Mentions) == 0 {
		tree.AddNode("mentions: []")
		return tree.String()
	}
	mentions := tree.AddBranch("mentions")
	for i, m := range doc.Mentions {
		label := fmt.Sprintf("[%d] %s %d..%d (id:%s)", i, m.Label, m.Start, m.End, m.ID)
		if opts.NoFields || len(m.Fields) == 0 {
			mentions.AddNode(label)
			continue
		}
		branch := mentions.AddBranch(label)
		addFields(branch, m.Fields, opts)
	}
	return tree.String()
}

func addFields(branch treeprint.Tree, fields map[string]any, opts TreeOptions) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := fields[k].(type) {
		case map[string]any:
			if len(v) == 0 {
				branch.AddNode(k + ": {}")
				continue
			}
			addFields(branch.AddBranch(k), v, opts)
		default:
			branch.AddNode(k + ": " + truncate(formatScalar(v), opts.MaxStringLen))
		}
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatScalar(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func quoteIfBlank(s string) string {
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, "\n\t") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// truncate shortens s to max runes, ending with "...".
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max <= 3 {
		return "..."
	}
	return string(runes[:max-3]) + "..."
}
