// Package tui runs the interactive mention editor in a terminal.
//
//	res, err := tui.Run(tui.Options{Entities: people})
//	fmt.Println(res.Canonical)
package tui

import (
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"golang.org/x/term"

	"github.com/oakwood-commons/mentionx/internal/completion"
	"github.com/oakwood-commons/mentionx/internal/config"
	"github.com/oakwood-commons/mentionx/internal/ui"
	"github.com/oakwood-commons/mentionx/pkg/mention"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS environment variable.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Options configures an editor session.
type Options struct {
	// ConfigPath is a YAML or TOML file merged over the defaults.
	ConfigPath string
	// Entities are the suggestion candidates.
	Entities []mention.Entity
	// Filter overrides suggestions.filter from the config when set.
	Filter string
	// Initial is canonical text loaded before the first key.
	Initial string
	// SubmitQuits ends the session after the first message is sent.
	SubmitQuits bool
	NoColor     bool
	Width       int
	Logger      logr.Logger
	// ProgramOptions are passed to tea.NewProgram.
	ProgramOptions []tea.ProgramOption
}

// Result is the state a session ended in.
type Result struct {
	// Canonical is the unsent text when the session ended.
	Canonical string `json:"canonical" yaml:"canonical"`
	// Submitted holds every sent message in canonical form.
	Submitted []string `json:"submitted" yaml:"submitted"`
}

// NewModel builds the Bubble Tea model for opts without starting a program.
func NewModel(opts Options) (*ui.Model, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	filter := cfg.Suggestions.Filter
	if opts.Filter != "" {
		filter = opts.Filter
	}
	engine, err := completion.NewFromEntities(opts.Entities, completion.Settings{
		DisplayField: cfg.DisplayField,
		Filter:       filter,
		DetailField:  cfg.Suggestions.DetailField,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return ui.New(cfg, engine, ui.Options{
		Initial:     opts.Initial,
		NoColor:     opts.NoColor,
		SubmitQuits: opts.SubmitQuits,
		Width:       opts.Width,
		Logger:      opts.Logger,
	})
}

// Run starts an interactive session and blocks until it ends.
func Run(opts Options) (Result, error) {
	m, err := NewModel(opts)
	if err != nil {
		return Result{}, err
	}
	final, err := ui.Run(m, opts.ProgramOptions...)
	return resultOf(final), err
}

// Script replays keys against a session without a terminal. Tokens use the
// same notation as ui.KeyMsgs: literal text and keys like "<Tab>" or "<CR>".
func Script(opts Options, keys []string) (Result, error) {
	m, err := NewModel(opts)
	if err != nil {
		return Result{}, err
	}
	ui.ApplyKeys(m, keys)
	return resultOf(m), nil
}

func resultOf(m *ui.Model) Result {
	return Result{Canonical: m.Canonical(), Submitted: m.Submitted()}
}
