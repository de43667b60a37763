package rangemap

// Selection is a host selection in raw display text. Start == End is a caret.
type Selection struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Caret returns a degenerate selection at offset.
func Caret(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// IsCaret reports whether the selection is empty.
func (s Selection) IsCaret() bool {
	return s.Start == s.End
}

// Len returns the number of selected runes.
func (s Selection) Len() int {
	n := s.Normalize()
	return n.End - n.Start
}

// Normalize orders Start and End.
func (s Selection) Normalize() Selection {
	if s.Start > s.End {
		return Selection{Start: s.End, End: s.Start}
	}
	return s
}

// Clamp normalizes the selection and limits both ends to [0, n].
func (s Selection) Clamp(n int) Selection {
	s = s.Normalize()
	s.Start = clamp(s.Start, 0, n)
	s.End = clamp(s.End, 0, n)
	return s
}

// Shift moves both ends by delta.
func (s Selection) Shift(delta int) Selection {
	return Selection{Start: s.Start + delta, End: s.End + delta}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
