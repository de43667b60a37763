package completion

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mentionx/internal/cel"
	"github.com/oakwood-commons/mentionx/internal/rangemap"
)

func people() []rangemap.Entity {
	return []rangemap.Entity{
		{ID: "1", Fields: map[string]any{"name": "Tim Smith", "team": "core", "email": "tim@example.com"}},
		{ID: "2", Fields: map[string]any{"name": "Tina"}},
		{ID: "3", Fields: map[string]any{"name": "Nic"}},
		{ID: "4", Fields: map[string]any{"name": "Bob Timmons", "team": "core"}},
		{ID: "5", Fields: map[string]any{"name": "Artim"}},
		{ID: "6", Fields: map[string]any{"name": "Tom Ikea Miller"}},
		{ID: "tim-admin", Fields: map[string]any{"name": "Root"}},
		{ID: "7", Fields: map[string]any{"login": "ghost"}},
	}
}

func newRegistry() *EntityRegistry {
	r := NewEntityRegistry("name")
	r.Load(people())
	return r
}

func ids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Entity.ID
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		keyword, label, id string
		want               MatchKind
	}{
		{"", "Tim", "1", MatchAll},
		{"tim", "Tim", "1", MatchExact},
		{"TI", "Tim", "1", MatchPrefix},
		{"smi", "Tim Smith", "1", MatchWordPrefix},
		{"doe", "jane_doe", "1", MatchWordPrefix},
		{"ith", "Tim Smith", "1", MatchSubstring},
		{"u4", "Tim", "u42", MatchID},
		{"tsh", "Tim Smith", "1", MatchNone},
		{"xyz", "Tim", "1", MatchNone},
		{"a", "-", "1", MatchNone},
	}
	for _, tt := range tests {
		kind, score := Score(tt.keyword, tt.label, tt.id)
		assert.Equal(t, tt.want, kind, "%q vs %q", tt.keyword, tt.label)
		assert.Equal(t, matchScores[tt.want], score)
	}
}

func TestFuzzyScores(t *testing.T) {
	labels := []string{"Tim Smith", "Nic", "Tom Ikea Miller", "Thomas Shaw"}

	got := FuzzyScores("tsh", labels)
	require.Contains(t, got, 0)
	require.Contains(t, got, 3)
	assert.NotContains(t, got, 1)
	for i, score := range got {
		assert.Greater(t, score, matchScores[MatchAll], "label %q", labels[i])
		assert.Less(t, score, matchScores[MatchID], "label %q", labels[i])
	}

	assert.Empty(t, FuzzyScores("", labels))
	assert.Empty(t, FuzzyScores("xyz", labels))
}

func TestFuzzyScoresIgnoreCase(t *testing.T) {
	assert.Len(t, FuzzyScores("TSM", []string{"tim smith"}), 1)
	assert.Len(t, FuzzyScores("tsm", []string{"TIM SMITH"}), 1)
}

func TestEngineRanksFuzzyBelowDirectMatches(t *testing.T) {
	engine := NewEngine(NewRegistryProvider(newRegistry()), logr.Discard())

	got, err := engine.Suggest("tsh", Context{})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "1", got[0].Entity.ID)
	for _, c := range got {
		assert.Equal(t, MatchFuzzy, c.Match)
	}

	got, err = engine.Suggest("tim", Context{})
	require.NoError(t, err)
	last := got[len(got)-1]
	assert.Equal(t, "6", last.Entity.ID)
	assert.Equal(t, MatchFuzzy, last.Match)
}

func TestEngineRanksByScore(t *testing.T) {
	engine := NewEngine(NewRegistryProvider(newRegistry()), logr.Discard())

	got, err := engine.Suggest("tim", Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4", "5", "tim-admin", "6"}, ids(got))
	assert.Equal(t, MatchPrefix, got[0].Match)
	assert.Equal(t, "Tim Smith", got[0].Display)

	got, err = engine.Suggest("nic", Context{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MatchExact, got[0].Match)
}

func TestEngineEmptyKeywordListsEveryLabelledEntity(t *testing.T) {
	engine := NewEngine(NewRegistryProvider(newRegistry()), logr.Discard())
	got, err := engine.Suggest("", Context{})
	require.NoError(t, err)
	// the entity without a name cannot be mentioned
	assert.Equal(t, []string{"5", "4", "3", "tim-admin", "1", "2", "6"}, ids(got))

	got, err = engine.Suggest("", Context{DisplayField: "login"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, ids(got))
}

func TestEngineExcludeAndLimit(t *testing.T) {
	engine := NewEngine(NewRegistryProvider(newRegistry()), logr.Discard())
	got, err := engine.Suggest("tim", Context{Exclude: []string{"1"}, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, ids(got))
}

func TestEngineDeduplicatesKeepingBestScore(t *testing.T) {
	tim := rangemap.NewEntity("1", "name", "Tim")
	provider := ProviderFunc(func(string, Context) ([]Candidate, error) {
		return []Candidate{
			{Entity: tim, Display: "Tim", Score: 50},
			{Entity: rangemap.NewEntity("2", "name", "Nic"), Display: "Nic", Score: 100},
			{Entity: tim, Display: "Tim", Score: 150},
		}, nil
	})
	got, err := NewEngine(provider, logr.Discard()).Suggest("t", Context{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Entity.ID)
	assert.Equal(t, 150, got[0].Score)
}

func TestEngineProviderError(t *testing.T) {
	boom := errors.New("boom")
	provider := ProviderFunc(func(string, Context) ([]Candidate, error) { return nil, boom })
	_, err := NewEngine(provider, logr.Discard()).Suggest("t", Context{})
	assert.ErrorIs(t, err, boom)
}

func TestRegistryProviderFilter(t *testing.T) {
	eval, err := cel.NewEvaluator()
	require.NoError(t, err)
	filter, err := eval.NewFilter(`_.team == "core"`)
	require.NoError(t, err)

	provider := NewRegistryProvider(newRegistry(), WithFilter(filter), WithDetailField("email"))
	got, err := NewEngine(provider, logr.Discard()).Suggest("", Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "1"}, ids(got))
	assert.Equal(t, "", got[0].Detail)
	assert.Equal(t, "tim@example.com", got[1].Detail)

	bad, err := eval.NewFilter(`_.name`)
	require.NoError(t, err)
	_, err = NewRegistryProvider(newRegistry(), WithFilter(bad)).Candidates("", Context{})
	assert.Error(t, err)
}

func TestRegistryProviderNestedDetail(t *testing.T) {
	r := NewEntityRegistry("name")
	r.Load([]rangemap.Entity{
		{ID: "1", Fields: map[string]any{"name": "Ann", "contact": map[string]any{"emails": []any{"ann@example.com"}}}},
		{ID: "2", Fields: map[string]any{"name": "Bea", "contact.emails[0]": "flat@example.com"}},
		{ID: "3", Fields: map[string]any{"name": "Cy"}},
	})
	got, err := NewRegistryProvider(r, WithDetailField("contact.emails[0]")).Candidates("", Context{})
	require.NoError(t, err)
	details := map[string]string{}
	for _, c := range got {
		details[c.Entity.ID] = c.Detail
	}
	assert.Equal(t, map[string]string{"1": "ann@example.com", "2": "flat@example.com", "3": ""}, details)
}

func TestRegistry(t *testing.T) {
	r := NewEntityRegistry("")
	assert.Equal(t, "name", r.DisplayField())

	r.Load([]rangemap.Entity{
		rangemap.NewEntity("1", "name", "tim"),
		{ID: "1", Fields: map[string]any{"name": "Tim", "team": "core"}},
		rangemap.NewEntity("2", "name", "Ann"),
	})
	assert.Equal(t, 2, r.Size())
	require.NotNil(t, r.Get("1"))
	assert.Equal(t, "core", r.Get("1").Fields["team"])
	assert.Nil(t, r.Get("404"))

	r.Add(rangemap.NewEntity("3", "name", "bea"))
	var labels []string
	for _, e := range r.All() {
		labels = append(labels, e.Display("name"))
	}
	assert.Equal(t, []string{"Ann", "bea", "Tim"}, labels)

	assert.Len(t, r.Search("T"), 1)
	assert.Len(t, r.Search("3"), 1)
	assert.Len(t, r.Search(""), 3)
}

func TestFormat(t *testing.T) {
	c := Candidate{Entity: people()[0], Display: "Tim Smith", Detail: "tim@example.com"}
	assert.Equal(t, "@Tim Smith", FormatLabel('@', c))
	assert.Equal(t, "@Tim Smith  tim@example.com", FormatOneLiner('@', c))
	assert.Equal(t, "#Nic", FormatOneLiner('#', Candidate{Display: "Nic"}))
	assert.Equal(t, []string{
		"@Tim Smith  (id:1)",
		"tim@example.com",
		"  email: tim@example.com",
	}, FormatLines('@', c, "name", 1))
}

func TestNewFromEntities(t *testing.T) {
	engine, err := NewFromEntities(people(), Settings{
		DisplayField: "name",
		Filter:       `_.team == "core"`,
		DetailField:  "team",
	})
	require.NoError(t, err)
	got, err := engine.Suggest("tim", Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(got))
	assert.Equal(t, "core", got[0].Detail)

	_, err = NewFromEntities(people(), Settings{Filter: "_.("})
	assert.Error(t, err)
}
