package markup_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mentionx/internal/markup"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

func TestFromCanonical(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantText  string
		wantSpans []rangemap.Range
	}{
		{
			name:     "plain text",
			input:    "hello there",
			wantText: "hello there",
		},
		{
			name:     "single mention in the middle",
			input:    "hi @[Tim](id:1) bye",
			wantText: "hi @Tim bye",
			wantSpans: []rangemap.Range{
				{Start: 3, End: 6, Entity: rangemap.Entity{ID: "1"}},
			},
		},
		{
			name:     "adjacent mentions",
			input:    "@[tim](id:7)@[nic](id:8)",
			wantText: "@tim@nic",
			wantSpans: []rangemap.Range{
				{Start: 0, End: 3, Entity: rangemap.Entity{ID: "7"}},
				{Start: 4, End: 7, Entity: rangemap.Entity{ID: "8"}},
			},
		},
		{
			name:     "offsets count runes",
			input:    "héllo @[Zoë](id:z) ✓",
			wantText: "héllo @Zoë ✓",
			wantSpans: []rangemap.Range{
				{Start: 6, End: 9, Entity: rangemap.Entity{ID: "z"}},
			},
		},
		{
			name:     "display with spaces",
			input:    "@[John Smith](id:js)",
			wantText: "@John Smith",
			wantSpans: []rangemap.Range{
				{Start: 0, End: 10, Entity: rangemap.Entity{ID: "js"}},
			},
		},
		{
			name:     "literal marker after a token",
			input:    "@[Tim](id:1) see ](id: x)",
			wantText: "@Tim see ](id: x)",
			wantSpans: []rangemap.Range{
				{Start: 0, End: 3, Entity: rangemap.Entity{ID: "1"}},
			},
		},
		{
			name:     "broken token next to a complete one",
			input:    "hi @[Tim](id:) and @[Nic](id:2)",
			wantText: "hi @[Tim](id:) and @Nic",
			wantSpans: []rangemap.Range{
				{Start: 19, End: 22, Entity: rangemap.Entity{ID: "2"}},
			},
		},
		{
			name:     "link without the prefix stays literal",
			input:    "[a](id:2) @[Tim](id:1)",
			wantText: "[a](id:2) @Tim",
			wantSpans: []rangemap.Range{
				{Start: 10, End: 13, Entity: rangemap.Entity{ID: "1"}},
			},
		},
		{
			name:     "stray bracket before a token",
			input:    "@[a @[Tim](id:1)",
			wantText: "@[a @Tim",
			wantSpans: []rangemap.Range{
				{Start: 4, End: 7, Entity: rangemap.Entity{ID: "1"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := markup.FromCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, doc.Text)
			got := doc.Ranges.Sorted()
			require.Len(t, got, len(tt.wantSpans))
			for i, want := range tt.wantSpans {
				assert.Equal(t, want.Start, got[i].Start)
				assert.Equal(t, want.End, got[i].End)
				assert.Equal(t, want.Entity.ID, got[i].Entity.ID)
			}
			require.NoError(t, doc.Ranges.Validate(len([]rune(doc.Text))))
		})
	}
}

func TestFromCanonicalMalformed(t *testing.T) {
	inputs := []string{
		"hi @[Tim](id:1",
		"see ](id: x",
	}
	for _, in := range inputs {
		doc, err := markup.FromCanonical(in)
		var malformed *markup.MalformedMarkupError
		require.True(t, errors.As(err, &malformed), "input %q", in)
		assert.Equal(t, in, doc.Text)
		assert.True(t, doc.Ranges.IsEmpty())
	}
}

func TestToCanonicalSortsByStart(t *testing.T) {
	// inserted right-to-left on purpose
	ranges, err := rangemap.New(
		rangemap.Range{Start: 9, End: 12, Entity: rangemap.NewEntity("2", "name", "Nic")},
		rangemap.Range{Start: 0, End: 3, Entity: rangemap.NewEntity("1", "name", "Tim")},
	)
	require.NoError(t, err)

	got := markup.ToCanonical("@Tim and @Nic!", ranges)
	assert.Equal(t, "@[Tim](id:1) and @[Nic](id:2)!", got)
}

func TestToCanonicalUsesDisplayField(t *testing.T) {
	e := rangemap.Entity{ID: "9", Fields: map[string]any{"username": "bob", "name": "Robert"}}
	ranges, err := rangemap.New(rangemap.NewRange(0, 4, e))
	require.NoError(t, err)

	assert.Equal(t, "@[bob](id:9) hi", markup.NewCodec("username").ToCanonical("@bob hi", ranges))
}

func TestToCanonicalFallsBackToVisibleText(t *testing.T) {
	ranges, err := rangemap.New(rangemap.NewRange(0, 4, rangemap.Entity{ID: "9"}))
	require.NoError(t, err)
	assert.Equal(t, "@[bob](id:9)", markup.ToCanonical("@bob", ranges))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"no mentions",
		"@[tim](id:7) ",
		"hi @[Tim](id:1) and @[Nic](id:2), bye",
		"@[a](id:1)@[b](id:2)@[c](id:3)",
		"日本 @[山田](id:42) です",
		"@[Tim](id:1) see ](id: x",
		"x) @[a](id:1)](id:",
		"(id:@[a](id:1)) [b]",
	}
	codec := markup.NewCodec("name")
	for _, in := range inputs {
		doc, err := codec.FromCanonical(in)
		require.NoError(t, err)

		canonical := codec.ToCanonical(doc.Text, doc.Ranges)
		assert.Equal(t, in, canonical)

		again, err := codec.FromCanonical(canonical)
		require.NoError(t, err)
		assert.Equal(t, doc.Text, again.Text)
		assert.True(t, doc.Ranges.Equal(again.Ranges))
	}
}

func TestSpans(t *testing.T) {
	doc, err := markup.FromCanonical("hi @[Tim](id:1) and @[Nic](id:2)")
	require.NoError(t, err)

	spans := markup.Spans(doc.Text, doc.Ranges)
	assert.Equal(t, []markup.Span{
		{Text: "hi "},
		{Text: "@Tim", IsMention: true, EntityID: "1"},
		{Text: " and "},
		{Text: "@Nic", IsMention: true, EntityID: "2"},
	}, spans)
	assert.Equal(t, doc.Text, markup.Join(spans))
}

func TestHasTokens(t *testing.T) {
	assert.True(t, markup.HasTokens("x @[a](id:1)"))
	assert.False(t, markup.HasTokens("x @a"))
}
