// Package trigger tracks suggestion sessions opened by a trigger character
// and extracts the keyword typed after it.
package trigger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultTrigger opens a session when typed.
const DefaultTrigger = '@'

// DefaultKeywordPattern matches the characters a keyword may contain.
const DefaultKeywordPattern = `[A-Za-z0-9_-]+`

// Policy decides whether a typed trigger may open a session.
type Policy int

const (
	// Anywhere opens on every trigger.
	Anywhere Policy = iota
	// NewWordOnly opens only when the trigger starts a word.
	NewWordOnly
)

func (p Policy) String() string {
	switch p {
	case NewWordOnly:
		return "new-word-only"
	default:
		return "anywhere"
	}
}

// ParsePolicy accepts "anywhere" and "new-word-only" ("new-words-only" is
// tolerated).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "anywhere":
		return Anywhere, nil
	case "new-word-only", "new-words-only":
		return NewWordOnly, nil
	default:
		return Anywhere, fmt.Errorf("unknown trigger location %q (expected anywhere or new-word-only)", s)
	}
}

// State is the observable tracking state.
type State struct {
	Active       bool   `json:"active" yaml:"active"`
	TriggerIndex int    `json:"trigger_index" yaml:"trigger_index"`
	Keyword      string `json:"keyword" yaml:"keyword"`
}

// EventKind identifies a state transition.
type EventKind int

const (
	EventOpened EventKind = iota
	EventKeywordChanged
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventKeywordChanged:
		return "keyword"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event reports a transition and the state after it.
type Event struct {
	Kind  EventKind
	State State
}

// Tracker is an immutable state machine. Every observation returns the next
// tracker and the events the transition produced.
type Tracker struct {
	trigger rune
	policy  Policy
	pattern *regexp.Regexp
	state   State
}

// New builds an idle tracker. An empty keywordPattern selects
// DefaultKeywordPattern.
func New(trigger rune, policy Policy, keywordPattern string) (Tracker, error) {
	if trigger == 0 || unicode.IsSpace(trigger) {
		return Tracker{}, fmt.Errorf("invalid trigger %q", trigger)
	}
	if keywordPattern == "" {
		keywordPattern = DefaultKeywordPattern
	}
	if _, err := regexp.Compile(keywordPattern); err != nil {
		return Tracker{}, fmt.Errorf("compile keyword pattern: %w", err)
	}

	expr := regexp.QuoteMeta(string(trigger)) + "((?:" + keywordPattern + ")?)"
	if policy == NewWordOnly {
		expr = `\B` + expr
	}
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return Tracker{}, fmt.Errorf("compile keyword pattern: %w", err)
	}
	return Tracker{trigger: trigger, policy: policy, pattern: pattern}, nil
}

// Default returns a tracker for "@" under the Anywhere policy.
func Default() Tracker {
	t, err := New(DefaultTrigger, Anywhere, "")
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tracker) Trigger() rune  { return t.trigger }
func (t Tracker) Policy() Policy { return t.policy }
func (t Tracker) State() State   { return t.state }
func (t Tracker) Active() bool   { return t.state.Active }

// Observe inspects text after a change with the caret at caret. A trigger
// just before the caret opens (or re-anchors) a session; whitespace before the
// caret closes it; anything else re-derives the keyword.
func (t Tracker) Observe(text string, caret int) (Tracker, []Event) {
	runes := []rune(text)
	caret = clampCaret(caret, len(runes))

	if caret > 0 && runes[caret-1] == t.trigger && t.boundaryOK(runes, caret-1) {
		if t.state.Active && t.state.TriggerIndex == caret-1 {
			return t.rederive(runes, caret)
		}
		t.state = State{Active: true, TriggerIndex: caret - 1}
		next, events := t.rederive(runes, caret)
		return next, append([]Event{{Kind: EventOpened, State: t.state}}, events...)
	}

	if !t.state.Active {
		return t, nil
	}
	if t.lost(runes, caret) || caret == 0 || unicode.IsSpace(runes[caret-1]) {
		return t.close()
	}
	return t.rederive(runes, caret)
}

// ObserveCaret handles a caret move with no text change. It never opens a
// session; it closes one when the caret leaves the keyword run.
func (t Tracker) ObserveCaret(text string, caret int) (Tracker, []Event) {
	if !t.state.Active {
		return t, nil
	}
	runes := []rune(text)
	caret = clampCaret(caret, len(runes))
	if t.lost(runes, caret) {
		return t.close()
	}
	for _, r := range runes[t.state.TriggerIndex+1 : caret] {
		if unicode.IsSpace(r) {
			return t.close()
		}
	}
	return t.rederive(runes, caret)
}

// Cancel closes an open session.
func (t Tracker) Cancel() (Tracker, []Event) {
	if !t.state.Active {
		return t, nil
	}
	return t.close()
}

// lost reports whether the session anchor no longer holds: the caret moved to
// or before the trigger, or the trigger itself was removed.
func (t Tracker) lost(runes []rune, caret int) bool {
	i := t.state.TriggerIndex
	return caret <= i || i >= len(runes) || runes[i] != t.trigger
}

func (t Tracker) close() (Tracker, []Event) {
	t.state = State{}
	return t, []Event{{Kind: EventClosed, State: t.state}}
}

// rederive takes the last keyword match between the trigger and the caret.
func (t Tracker) rederive(runes []rune, caret int) (Tracker, []Event) {
	keyword := ""
	if matches := t.pattern.FindAllStringSubmatch(string(runes[t.state.TriggerIndex:caret]), -1); len(matches) > 0 {
		keyword = matches[len(matches)-1][1]
	}
	if keyword == t.state.Keyword {
		return t, nil
	}
	t.state.Keyword = keyword
	return t, []Event{{Kind: EventKeywordChanged, State: t.state}}
}

func (t Tracker) boundaryOK(runes []rune, index int) bool {
	if t.policy == Anywhere || index == 0 {
		return true
	}
	return unicode.IsSpace(runes[index-1])
}

func clampCaret(caret, n int) int {
	if caret < 0 {
		return 0
	}
	if caret > n {
		return n
	}
	return caret
}
