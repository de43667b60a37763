// Package ui is a Bubble Tea front end for the mention editor. A bubbles
// textinput handles keystrokes; every change it makes is forwarded to a
// mention.Editor and the editor's state is what gets drawn.
package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mentionx/internal/completion"
	"github.com/oakwood-commons/mentionx/internal/config"
	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/pkg/mention"
)

// Options configures a Model beyond what the config file covers.
type Options struct {
	Prompt      string // Drawn before the text; defaults to "> "
	Initial     string // Canonical text loaded at start
	NoColor     bool
	SubmitQuits bool // Quit after the first submitted message
	Width       int  // 0 waits for a WindowSizeMsg
	Logger      logr.Logger
}

// Model is the Bubble Tea model. Use it through a pointer.
type Model struct {
	cfg    config.Config
	opts   Options
	editor *mention.Editor
	engine *completion.Engine
	input  textinput.Model
	styles styles

	candidates []completion.Candidate
	selected   int
	keyword    string

	status    string
	statusErr bool
	submitted []string
	width     int
	quitting  bool
}

// New builds a model over cfg. engine may be nil, in which case sessions
// open but no suggestions are listed.
func New(cfg config.Config, engine *completion.Engine, opts Options) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	trig, _ := cfg.TriggerRune()
	policy, _ := cfg.Policy()
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}

	m := &Model{
		cfg:    cfg,
		opts:   opts,
		engine: engine,
		styles: newStyles(cfg.Styles, opts.NoColor),
		width:  opts.Width,
	}

	ed, err := mention.NewEditor(
		mention.WithTrigger(trig),
		mention.WithPolicy(policy),
		mention.WithKeywordPattern(cfg.KeywordPattern),
		mention.WithDisplayField(cfg.DisplayField),
		mention.WithLogger(opts.Logger),
		mention.WithNotifier(mention.NotifierFuncs{
			MentionsRemoved: m.onMentionsRemoved,
		}),
	)
	if err != nil {
		return nil, err
	}
	m.editor = ed

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = cfg.Placeholder
	ti.CharLimit = 0
	ti.Focus()
	m.input = ti

	if opts.Initial != "" {
		if err := ed.SetInitialCanonicalText(opts.Initial); err != nil {
			return nil, err
		}
	}
	m.syncInput()
	m.refresh()
	return m, nil
}

// Editor exposes the underlying editor.
func (m *Model) Editor() *mention.Editor { return m.editor }

// Canonical returns the current canonical text.
func (m *Model) Canonical() string { return m.editor.Model().Canonical() }

// Submitted returns the canonical text of every submitted message, oldest first.
func (m *Model) Submitted() []string { return m.submitted }

// Candidates returns the suggestions currently listed.
func (m *Model) Candidates() []completion.Candidate { return m.candidates }

// SelectedIndex returns the highlighted suggestion.
func (m *Model) SelectedIndex() int { return m.selected }

// Status returns the status line text.
func (m *Model) Status() string { return m.status }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		if m.editor.Model().Tracking().Active {
			m.check(m.editor.CancelTracking())
			m.refresh()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case "up":
		if n := len(m.candidates); n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
		return m, nil
	case "down":
		if n := len(m.candidates); n > 0 {
			m.selected = (m.selected + 1) % n
		}
		return m, nil
	case "tab", "enter":
		if len(m.candidates) > 0 {
			m.accept(m.candidates[m.selected])
			return m, nil
		}
		if msg.String() == "enter" {
			return m, m.submit()
		}
		return m, nil
	case "ctrl+t":
		m.check(m.editor.OpenMentions())
		m.syncInput()
		m.refresh()
		return m, nil
	}
	return m.edit(msg)
}

// edit lets the textinput apply the key, then reports the result to the
// editor: a text change with the caret it left behind, or a bare caret move.
func (m *Model) edit(msg tea.Msg) (tea.Model, tea.Cmd) {
	prevText, prevPos := m.input.Value(), m.input.Position()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	text, pos := m.input.Value(), m.input.Position()

	switch {
	case text != prevText:
		m.clearStatus()
		m.check(m.editor.OnTextChanged(prevText, text, mention.Caret(pos)))
	case pos != prevPos:
		_, err := m.editor.OnSelectionChanged(mention.Caret(pos))
		m.check(err)
	default:
		return m, cmd
	}
	m.syncInput()
	m.refresh()
	return m, cmd
}

func (m *Model) accept(c completion.Candidate) {
	m.check(m.editor.OnSuggestionAccepted(c.Entity))
	m.syncInput()
	m.refresh()
}

func (m *Model) submit() tea.Cmd {
	em := m.editor.Model()
	if strings.TrimSpace(em.Text()) == "" {
		return nil
	}
	m.submitted = append(m.submitted, em.Canonical())
	m.check(m.editor.OnResetRequested())
	m.status, m.statusErr = "sent", false
	m.syncInput()
	m.refresh()
	if m.opts.SubmitQuits {
		m.quitting = true
		return tea.Quit
	}
	return nil
}

// syncInput copies the editor's text and caret back into the textinput.
func (m *Model) syncInput() {
	em := m.editor.Model()
	if m.input.Value() != em.Text() {
		m.input.SetValue(em.Text())
	}
	m.input.SetCursor(em.Selection().End)
}

// refresh recomputes the suggestion list for the open session.
func (m *Model) refresh() {
	em := m.editor.Model()
	state := em.Tracking()
	if !state.Active || m.engine == nil {
		m.candidates, m.selected, m.keyword = nil, 0, ""
		return
	}

	ctx := completion.Context{
		DisplayField: m.cfg.DisplayField,
		Limit:        m.cfg.Suggestions.Max,
	}
	if m.cfg.Suggestions.ExcludeMentioned {
		for _, e := range em.Mentions() {
			ctx.Exclude = append(ctx.Exclude, e.ID)
		}
	}
	candidates, err := m.engine.Suggest(state.Keyword, ctx)
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		m.candidates = nil
		return
	}
	if state.Keyword != m.keyword {
		m.selected = 0
	}
	m.keyword = state.Keyword
	m.candidates = candidates
	if m.selected >= len(candidates) {
		m.selected = 0
	}
}

func (m *Model) onMentionsRemoved(entities []mention.Entity) {
	labels := make([]string, 0, len(entities))
	for _, e := range entities {
		labels = append(labels, markup.MentionPrefix+e.Display(m.cfg.DisplayField))
	}
	m.status, m.statusErr = "removed "+strings.Join(labels, ", "), false
}

func (m *Model) check(err error) {
	if err == nil {
		return
	}
	m.opts.Logger.V(1).Info("editor rejected event", "error", err.Error())
	m.status, m.statusErr = err.Error(), true
}

func (m *Model) clearStatus() {
	m.status, m.statusErr = "", false
}
