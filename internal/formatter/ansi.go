package formatter

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/mentionx/internal/markup"
)

// Styles are the terminal styles for mention text. Plain text is written
// as is so multi-line input keeps its layout.
type Styles struct {
	Mention lipgloss.Style
}

// NewStyles builds styles from a mention color ("12", "#5fafff"). An empty
// color leaves mentions bold only.
func NewStyles(mentionColor string) Styles {
	mention := lipgloss.NewStyle().Bold(true).Inline(true)
	if mentionColor != "" {
		mention = mention.Foreground(lipgloss.Color(mentionColor))
	}
	return Styles{Mention: mention}
}

// RenderANSI styles each mention span. With noColor the text is returned
// unstyled.
func RenderANSI(spans []markup.Span, st Styles, noColor bool) string {
	if noColor {
		return markup.Join(spans)
	}
	var b strings.Builder
	for _, s := range spans {
		if s.IsMention {
			b.WriteString(st.Mention.Render(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
