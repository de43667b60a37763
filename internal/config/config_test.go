package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mentionx/internal/trigger"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "@", cfg.Trigger)
	assert.Equal(t, "anywhere", cfg.TriggerLocation)
	assert.Equal(t, "name", cfg.DisplayField)
	assert.Equal(t, trigger.DefaultKeywordPattern, cfg.KeywordPattern)
	assert.Equal(t, 8, cfg.Suggestions.Max)
	assert.True(t, cfg.Suggestions.ExcludeMentioned)
	assert.NotEmpty(t, cfg.Styles.Mention)

	r, err := cfg.TriggerRune()
	require.NoError(t, err)
	assert.Equal(t, '@', r)
}

func TestDefaultConfigYAMLIsACopy(t *testing.T) {
	a := DefaultConfigYAML()
	require.NotEmpty(t, a)
	a[0] = 'X'
	assert.NotEqual(t, byte('X'), DefaultConfigYAML()[0])
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	def, _ := Default()
	assert.Equal(t, def, cfg)
}

func TestLoadYAMLMergesOverDefaults(t *testing.T) {
	path := writeFile(t, "mentionx.yaml", `
trigger: "#"
trigger_location: new-word-only
suggestions:
  max: 3
  exclude_mentioned: false
styles:
  mention: "12"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "#", cfg.Trigger)
	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, trigger.NewWordOnly, p)
	assert.Equal(t, 3, cfg.Suggestions.Max)
	assert.False(t, cfg.Suggestions.ExcludeMentioned)
	assert.Equal(t, "12", cfg.Styles.Mention)

	// untouched keys keep their defaults
	assert.Equal(t, "name", cfg.DisplayField)
	assert.Equal(t, "#ff87d7", cfg.Styles.Selected)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "mentionx.toml", `
display_field = "username"

[suggestions]
filter = '_.active'
detail_field = "email"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "username", cfg.DisplayField)
	assert.Equal(t, "_.active", cfg.Suggestions.Filter)
	assert.Equal(t, "email", cfg.Suggestions.DetailField)
	assert.Equal(t, 8, cfg.Suggestions.Max)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "trigger: [unclosed"))
	assert.ErrorContains(t, err, "decode")

	_, err = Load(writeFile(t, "bad.toml", "trigger = "))
	assert.ErrorContains(t, err, "decode")
}

func TestValidate(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"two rune trigger", func(c *Config) { c.Trigger = "@@" }, "single non-space"},
		{"space trigger", func(c *Config) { c.Trigger = " " }, "single non-space"},
		{"empty trigger", func(c *Config) { c.Trigger = "" }, "single non-space"},
		{"bad location", func(c *Config) { c.TriggerLocation = "sometimes" }, "unknown trigger location"},
		{"empty display field", func(c *Config) { c.DisplayField = "" }, "display_field"},
		{"bad pattern", func(c *Config) { c.KeywordPattern = "(" }, "keyword_pattern"},
		{"negative max", func(c *Config) { c.Suggestions.Max = -1 }, "suggestions.max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := def
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := def
	cfg.Trigger = "＃"
	assert.NoError(t, cfg.Validate())
}

func TestYAMLRoundTrip(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)
	out, err := def.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "trigger_location: anywhere")

	cfg, err := Load(writeFile(t, "dump.yaml", out))
	require.NoError(t, err)
	assert.Equal(t, def, cfg)
}
