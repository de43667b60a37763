package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the program and returns the model as it was when the program
// exited. When opts.Width is 0 the terminal width is detected.
func Run(m *Model, opts ...tea.ProgramOption) (*Model, error) {
	if m.width <= 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			m.width = w
		}
	}
	prog := tea.NewProgram(m, opts...)
	final, err := prog.Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, err
	}
	return m, err
}
