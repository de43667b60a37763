package ui

import (
	"strings"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/mentionx/internal/completion"
	"github.com/oakwood-commons/mentionx/internal/config"
	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/pkg/mention"
)

const defaultWidth = 80

// mentionRune starts every inserted mention whatever the trigger is.
var mentionRune, _ = utf8.DecodeRuneInString(markup.MentionPrefix)

type styles struct {
	mention     lipgloss.Style
	selected    lipgloss.Style
	placeholder lipgloss.Style
	caret       lipgloss.Style
	status      lipgloss.Style
	errStatus   lipgloss.Style
	plain       bool
}

func newStyles(s config.Styles, noColor bool) styles {
	if noColor {
		return styles{plain: true}
	}
	return styles{
		mention:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.Mention)),
		selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.Selected)),
		placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(s.Placeholder)),
		caret:       lipgloss.NewStyle().Reverse(true),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color(s.Placeholder)),
		errStatus:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if s.plain || text == "" {
		return text
	}
	return st.Render(text)
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	em := m.editor.Model()

	var b strings.Builder
	b.WriteString(m.opts.Prompt)
	lineWidth := width - runewidth.StringWidth(m.opts.Prompt)
	if em.Len() == 0 && m.cfg.Placeholder != "" {
		b.WriteString(m.caretCell(" "))
		b.WriteString(m.styles.render(m.styles.placeholder, runewidth.Truncate(m.cfg.Placeholder, lineWidth-1, "…")))
	} else {
		b.WriteString(m.renderLine(em.Spans(), em.Selection().End, lineWidth))
	}

	if m.quitting {
		b.WriteString("\n")
		return b.String()
	}

	for i, c := range m.candidates {
		b.WriteString("\n")
		entry := runewidth.Truncate(completion.FormatOneLiner(mentionRune, c), width-2, "…")
		if i == m.selected {
			b.WriteString(m.styles.render(m.styles.selected, "> "+entry))
			continue
		}
		b.WriteString("  " + entry)
	}
	if m.status != "" {
		st := m.styles.status
		if m.statusErr {
			st = m.styles.errStatus
		}
		b.WriteString("\n")
		b.WriteString(m.styles.render(st, runewidth.Truncate(m.status, width, "…")))
	}
	return b.String()
}

// cell is one visible rune and whether it belongs to a mention.
type cell struct {
	r       rune
	mention bool
}

func cells(spans []mention.Span) []cell {
	var out []cell
	for _, sp := range spans {
		for _, r := range sp.Text {
			out = append(out, cell{r: r, mention: sp.IsMention})
		}
	}
	return out
}

// window returns the slice [start, end) of cells that fits in width columns
// and keeps the caret visible. The caret at the end of the text takes a
// column of its own.
func window(cs []cell, caret, width int) (int, int) {
	if width < 1 {
		width = 1
	}
	used := 1
	if caret < len(cs) {
		used = runewidth.RuneWidth(cs[caret].r)
	}
	start := caret
	for start > 0 {
		w := runewidth.RuneWidth(cs[start-1].r)
		if used+w > width {
			break
		}
		used += w
		start--
	}
	end := caret
	if caret < len(cs) {
		end = caret + 1
	}
	for end < len(cs) {
		w := runewidth.RuneWidth(cs[end].r)
		if used+w > width {
			break
		}
		used += w
		end++
	}
	return start, end
}

// renderLine draws the text with mentions styled and the caret shown in
// reverse video, scrolled horizontally to fit width.
func (m *Model) renderLine(spans []mention.Span, caret, width int) string {
	cs := cells(spans)
	if caret > len(cs) {
		caret = len(cs)
	}
	start, end := window(cs, caret, width)

	var b strings.Builder
	var run []rune
	runMention := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runMention {
			b.WriteString(m.styles.render(m.styles.mention, string(run)))
		} else {
			b.WriteString(string(run))
		}
		run = run[:0]
	}
	for i := start; i < end; i++ {
		c := cs[i]
		if i == caret {
			flush()
			b.WriteString(m.caretCell(string(c.r)))
			continue
		}
		if c.mention != runMention {
			flush()
			runMention = c.mention
		}
		run = append(run, c.r)
	}
	flush()
	if caret == len(cs) {
		b.WriteString(m.caretCell(" "))
	}
	return b.String()
}

func (m *Model) caretCell(s string) string {
	if m.styles.plain {
		return s
	}
	return m.styles.caret.Render(s)
}
