package completion

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// MatchKind says how a keyword matched a candidate.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchAll            // empty keyword
	MatchFuzzy          // fuzzy.Find matched the label
	MatchID             // id starts with the keyword
	MatchSubstring      // label contains the keyword
	MatchWordPrefix     // a later word of the label starts with the keyword
	MatchPrefix         // label starts with the keyword
	MatchExact          // label equals the keyword
)

var matchScores = map[MatchKind]int{
	MatchAll:        1,
	MatchFuzzy:      50,
	MatchID:         80,
	MatchSubstring:  100,
	MatchWordPrefix: 120,
	MatchPrefix:     150,
	MatchExact:      200,
}

func (k MatchKind) String() string {
	switch k {
	case MatchAll:
		return "all"
	case MatchFuzzy:
		return "fuzzy"
	case MatchID:
		return "id"
	case MatchSubstring:
		return "substring"
	case MatchWordPrefix:
		return "word-prefix"
	case MatchPrefix:
		return "prefix"
	case MatchExact:
		return "exact"
	default:
		return "none"
	}
}

// fuzzySpread bounds the fuzzy library score so the tier stays between
// MatchAll and MatchID.
const fuzzySpread = 29

// Score matches keyword against a label and an id, ignoring case. Labels that
// only match fuzzily return MatchNone here; see FuzzyScores.
func Score(keyword, label, id string) (MatchKind, int) {
	kind := match(strings.ToLower(keyword), strings.ToLower(label), strings.ToLower(id))
	return kind, matchScores[kind]
}

// FuzzyScores runs fuzzy.Find over labels and returns the score of each
// matched label keyed by its index. Scores fall inside the MatchFuzzy tier,
// ordered by the library's own ranking.
func FuzzyScores(keyword string, labels []string) map[int]int {
	if keyword == "" || len(labels) == 0 {
		return nil
	}
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.ToLower(l)
	}
	matches := fuzzy.Find(strings.ToLower(keyword), lowered)
	if len(matches) == 0 {
		return nil
	}
	out := make(map[int]int, len(matches))
	for _, m := range matches {
		out[m.Index] = matchScores[MatchFuzzy] + min(max(m.Score, -fuzzySpread), fuzzySpread)
	}
	return out
}

func match(keyword, label, id string) MatchKind {
	switch {
	case keyword == "":
		return MatchAll
	case label == keyword:
		return MatchExact
	case strings.HasPrefix(label, keyword):
		return MatchPrefix
	}
	for i, word := range strings.FieldsFunc(label, isWordBreak) {
		if i > 0 && strings.HasPrefix(word, keyword) {
			return MatchWordPrefix
		}
	}
	switch {
	case strings.Contains(label, keyword):
		return MatchSubstring
	case strings.HasPrefix(id, keyword):
		return MatchID
	}
	return MatchNone
}

func isWordBreak(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
}
