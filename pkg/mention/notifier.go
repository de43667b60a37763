package mention

// Notifier receives Editor output.
type Notifier interface {
	// OnDisplayUpdate delivers the display text and its styled spans.
	OnDisplayUpdate(text string, spans []Span)
	// OnCanonicalTextChanged delivers the canonical markup whenever it changes.
	OnCanonicalTextChanged(canonical string)
	// OnTrackingStateChanged fires on every session open, keyword change and close.
	OnTrackingStateChanged(state TrackingState)
	// OnMentionsRemoved lists mentions that lost their tag.
	OnMentionsRemoved(entities []Entity)
}

// NotifierFuncs adapts plain functions to Notifier. Nil fields are skipped.
type NotifierFuncs struct {
	DisplayUpdate        func(text string, spans []Span)
	CanonicalTextChanged func(canonical string)
	TrackingStateChanged func(state TrackingState)
	MentionsRemoved      func(entities []Entity)
}

func (f NotifierFuncs) OnDisplayUpdate(text string, spans []Span) {
	if f.DisplayUpdate != nil {
		f.DisplayUpdate(text, spans)
	}
}

func (f NotifierFuncs) OnCanonicalTextChanged(canonical string) {
	if f.CanonicalTextChanged != nil {
		f.CanonicalTextChanged(canonical)
	}
}

func (f NotifierFuncs) OnTrackingStateChanged(state TrackingState) {
	if f.TrackingStateChanged != nil {
		f.TrackingStateChanged(state)
	}
}

func (f NotifierFuncs) OnMentionsRemoved(entities []Entity) {
	if f.MentionsRemoved != nil {
		f.MentionsRemoved(entities)
	}
}
