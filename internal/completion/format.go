package completion

import (
	"fmt"
	"sort"
	"strings"
)

// FormatLabel returns the label as it appears in the text, e.g. "@Tim".
func FormatLabel(trigger rune, c Candidate) string {
	return string(trigger) + c.Display
}

// FormatOneLiner returns a single-line entry for a suggestion list.
func FormatOneLiner(trigger rune, c Candidate) string {
	label := FormatLabel(trigger, c)
	detail := strings.TrimSpace(c.Detail)
	if detail == "" {
		return label
	}
	return label + "  " + detail
}

// FormatLines returns multi-line help for a candidate: the label with its id,
// the detail, and up to maxFields other fields as "key: value" lines.
func FormatLines(trigger rune, c Candidate, displayField string, maxFields int) []string {
	lines := make([]string, 0, 2+len(c.Entity.Fields))
	lines = append(lines, FormatLabel(trigger, c)+"  (id:"+c.Entity.ID+")")
	if c.Detail != "" {
		lines = append(lines, c.Detail)
	}

	keys := make([]string, 0, len(c.Entity.Fields))
	for k := range c.Entity.Fields {
		if k != displayField && k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for i, k := range keys {
		if maxFields > 0 && i >= maxFields {
			break
		}
		lines = append(lines, fmt.Sprintf("  %s: %v", k, c.Entity.Fields[k]))
	}
	return lines
}
