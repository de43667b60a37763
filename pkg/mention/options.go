package mention

import (
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mentionx/internal/rangemap"
	"github.com/oakwood-commons/mentionx/internal/trigger"
)

type options struct {
	trigger        rune
	policy         Policy
	keywordPattern string
	displayField   string
	logger         logr.Logger
	notifier       Notifier
	source         SelectionSource
}

func defaultOptions() options {
	return options{
		trigger:      trigger.DefaultTrigger,
		policy:       Anywhere,
		displayField: rangemap.DefaultDisplayField,
		logger:       logr.Discard(),
		source:       &PushSelection{},
	}
}

// Option configures a Model or an Editor.
type Option func(*options)

// WithTrigger sets the character that opens a suggestion session.
func WithTrigger(r rune) Option {
	return func(o *options) {
		o.trigger = r
	}
}

// WithPolicy sets where a trigger may open a session.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithKeywordPattern sets the regular expression a keyword must match.
func WithKeywordPattern(pattern string) Option {
	return func(o *options) {
		o.keywordPattern = pattern
	}
}

// WithDisplayField selects the entity field rendered after the "@".
func WithDisplayField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.displayField = field
		}
	}
}

// WithLogger sets the logger. Recovered edit errors are logged at V(1).
func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithNotifier sets where an Editor sends its notifications. Models ignore it.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithSelectionSource sets how an Editor learns the post-edit selection for
// OnTextInput. Models ignore it.
func WithSelectionSource(s SelectionSource) Option {
	return func(o *options) {
		o.source = s
	}
}
