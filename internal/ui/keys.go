package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyKeys feeds scripted keys through Update. Each token is literal text
// mixed with Vim-style keys, e.g. "hi @ti<Tab>", "<BS>", "<C-t>", "<CR>".
// It stops early when a key asks the program to quit and reports whether it
// did.
func ApplyKeys(m *Model, tokens []string) bool {
	for _, tok := range tokens {
		for _, msg := range KeyMsgs(tok) {
			m.Update(msg)
			if m.quitting {
				return true
			}
		}
	}
	return m.quitting
}

// KeyMsgs parses a token into key presses. An unknown <...> sequence is typed
// as literal text.
func KeyMsgs(token string) []tea.KeyPressMsg {
	var out []tea.KeyPressMsg
	for rest := token; rest != ""; {
		open := strings.Index(rest, "<")
		if open == -1 {
			return append(out, textMsgs(rest)...)
		}
		out = append(out, textMsgs(rest[:open])...)
		closing := strings.Index(rest[open:], ">")
		if closing == -1 {
			return append(out, textMsgs(rest[open:])...)
		}
		name := rest[open : open+closing+1]
		if msg, ok := namedKey(name); ok {
			out = append(out, msg)
		} else {
			out = append(out, textMsgs(name)...)
		}
		rest = rest[open+closing+1:]
	}
	return out
}

func textMsgs(s string) []tea.KeyPressMsg {
	out := make([]tea.KeyPressMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return out
}

func namedKey(token string) (tea.KeyPressMsg, bool) {
	inner := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	switch inner {
	case "esc", "escape", "c-[":
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter}, true
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}, true
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " "}, true
	case "bs", "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}, true
	case "del", "delete":
		return tea.KeyPressMsg{Code: tea.KeyDelete}, true
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}, true
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}, true
	case "home":
		return tea.KeyPressMsg{Code: tea.KeyHome}, true
	case "end":
		return tea.KeyPressMsg{Code: tea.KeyEnd}, true
	case "c-c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, true
	case "c-t":
		return tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}, true
	}
	return tea.KeyPressMsg{}, false
}
