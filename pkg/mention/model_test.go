package mention_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mentionx/pkg/mention"
)

func load(t *testing.T, canonical string, opts ...mention.Option) mention.Model {
	t.Helper()
	m, err := mention.New(opts...)
	require.NoError(t, err)
	m, _, err = m.SetCanonicalText(canonical)
	require.NoError(t, err)
	return m
}

func TestModelIsAValue(t *testing.T) {
	before := load(t, "hi @[Tim](id:1)")
	after, ch, err := before.ApplyEdit("hi @Ti", mention.Caret(6), false)
	require.NoError(t, err)

	assert.Equal(t, "hi ", after.Text())
	assert.Equal(t, "hi @Tim", before.Text())
	assert.Equal(t, 1, before.Ranges().Len())
	assert.True(t, ch.Redraw)
	assert.Equal(t, mention.Caret(3), ch.Selection)
	assert.Equal(t, "point-delete", ch.Edit.String())
}

func TestModelUntag(t *testing.T) {
	m := load(t, "@[Tim](id:1) and @[Nic](id:2)")
	m, ch := m.Untag("1")
	assert.Equal(t, "@Tim and @[Nic](id:2)", m.Canonical())
	require.Len(t, ch.Removed, 1)

	_, ch = m.Untag("404")
	assert.False(t, ch.Redraw)
}

func TestModelRangeSelectionClosesSession(t *testing.T) {
	m := load(t, "hey ")
	m, _, err := m.ApplyEdit("hey @", mention.Caret(5), false)
	require.NoError(t, err)
	require.True(t, m.Tracking().Active)

	m, ch := m.MoveSelection(mention.Selection{Start: 0, End: 3})
	assert.False(t, m.Tracking().Active)
	require.Len(t, ch.Events, 1)
}

func TestModelSpans(t *testing.T) {
	m := load(t, "hi @[Tim](id:1)!")
	assert.Equal(t, []mention.Span{
		{Text: "hi "},
		{Text: "@Tim", IsMention: true, EntityID: "1"},
		{Text: "!"},
	}, m.Spans())
	require.Len(t, m.Mentions(), 1)
	assert.Equal(t, "Tim", m.Mentions()[0].Display(m.DisplayField()))
}

func TestModelCustomTrigger(t *testing.T) {
	m, err := mention.New(mention.WithTrigger('#'), mention.WithPolicy(mention.NewWordOnly))
	require.NoError(t, err)

	m, _, err = m.ApplyEdit("a#", mention.Caret(2), false)
	require.NoError(t, err)
	assert.False(t, m.Tracking().Active)

	m, _, err = m.ApplyEdit("a# #", mention.Caret(4), false)
	require.NoError(t, err)
	assert.Equal(t, mention.TrackingState{Active: true, TriggerIndex: 3}, m.Tracking())
}

func TestModelCanonicalSurvivesTypedMarkupCharacters(t *testing.T) {
	m := load(t, "@[Tim](id:1) ")
	m, _, err := m.ApplyEdit("@Tim see ](id: x", mention.Caret(16), false)
	require.NoError(t, err)
	require.Equal(t, "@[Tim](id:1) see ](id: x", m.Canonical())

	again := load(t, m.Canonical())
	assert.Equal(t, "@Tim see ](id: x", again.Text())
	assert.True(t, m.Ranges().Equal(again.Ranges()))
}

func TestModelBrokenTokenWithoutMentionsLoadsPlain(t *testing.T) {
	m, err := mention.New()
	require.NoError(t, err)
	m, _, err = m.SetCanonicalText("see ](id: x")

	var malformed *mention.MalformedMarkupError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "see ](id: x", m.Text())
	assert.True(t, m.Ranges().IsEmpty())
}
