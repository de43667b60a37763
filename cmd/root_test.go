package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const peopleYAML = `- id: 1
  name: Tim Cook
  team: core
- id: 2
  name: Tina
  team: web
- id: 3
  name: Nic
  team: core
`

// runCLI executes a fresh command tree isolated from the user's config.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func mustRunCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, _, err := runCLI(t, stdin, args...)
	require.NoError(t, err)
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeText(t *testing.T) {
	out := mustRunCLI(t, "", "decode", "hi @[Tim](id:1)")
	assert.Equal(t, "hi @Tim\n", out)
}

func TestDecodeReadsStdin(t *testing.T) {
	out := mustRunCLI(t, "cc @[Ann](id:7)\n", "decode", "-")
	assert.Equal(t, "cc @Ann\n", out)
}

func TestDecodeJSON(t *testing.T) {
	out := mustRunCLI(t, "", "decode", "-o", "json", "hi @[Tim](id:1)!")

	var doc struct {
		Text     string `json:"text"`
		Mentions []struct {
			ID    string `json:"id"`
			Start int    `json:"start"`
			End   int    `json:"end"`
		} `json:"mentions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "hi @Tim!", doc.Text)
	require.Len(t, doc.Mentions, 1)
	assert.Equal(t, "1", doc.Mentions[0].ID)
	assert.Equal(t, 3, doc.Mentions[0].Start)
	assert.Equal(t, 6, doc.Mentions[0].End)
}

func TestDecodeMalformedWarns(t *testing.T) {
	out, stderr, err := runCLI(t, "", "decode", "hi @[Tim](id:1")
	require.NoError(t, err)
	assert.Equal(t, "hi @[Tim](id:1\n", out)
	assert.Contains(t, stderr, "warning:")

	_, stderr, err = runCLI(t, "", "-q", "decode", "hi @[Tim](id:1")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestDecodeTree(t *testing.T) {
	out := mustRunCLI(t, "", "decode", "-o", "tree", "hi @[Tim](id:1)")
	assert.Contains(t, out, "text: hi @Tim")
	assert.Contains(t, out, "(id:1)")
}

func TestDecodeRejectsUnknownOutput(t *testing.T) {
	_, _, err := runCLI(t, "", "decode", "-o", "xml", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestEncodeRoundTrip(t *testing.T) {
	doc := mustRunCLI(t, "", "decode", "-o", "yaml", "hi @[Tim](id:1) and @[Nic](id:3)")
	out := mustRunCLI(t, doc, "encode")
	assert.Equal(t, "hi @[Tim](id:1) and @[Nic](id:3)\n", out)
}

func TestEncodeUsesVisibleLabel(t *testing.T) {
	path := writeFile(t, "doc.json", `{"text": "hi @Tim", "mentions": [{"id": 1, "start": 3, "end": 6}]}`)
	out := mustRunCLI(t, "", "encode", path)
	assert.Equal(t, "hi @[Tim](id:1)\n", out)
}

func TestEncodeRejectsOverlap(t *testing.T) {
	in := "text: hi @Tim\nmentions:\n  - {id: 1, start: 3, end: 6}\n  - {id: 2, start: 5, end: 6}\n"
	_, _, err := runCLI(t, in, "encode")
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	out := mustRunCLI(t, "", "render", "-f", "html", "--href", "/u/", "hi @[Tim](id:1)")
	assert.Contains(t, out, `href="/u/1"`)
	assert.Contains(t, out, "@Tim")
}

func TestRenderANSINoColor(t *testing.T) {
	out := mustRunCLI(t, "", "--no-color", "render", "hi @[Tim](id:1)")
	assert.Equal(t, "hi @Tim\n", out)
}

func TestSuggest(t *testing.T) {
	people := writeFile(t, "people.yaml", peopleYAML)

	out := mustRunCLI(t, "", "suggest", "ti", "-E", people)
	assert.Contains(t, out, "@Tim Cook")
	assert.Contains(t, out, "@Tina")
	assert.NotContains(t, out, "@Nic")

	out = mustRunCLI(t, "", "suggest", "ti", "-E", people, "--filter", `_.team == "core"`)
	assert.Equal(t, "@Tim Cook\n", out)

	out = mustRunCLI(t, "", "suggest", "ti", "-E", people, "--exclude", "1", "-o", "json")
	var got []suggestionOut
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "@[Tina](id:2)", got[0].Mention)
}

func TestSuggestNeedsEntities(t *testing.T) {
	_, _, err := runCLI(t, "", "suggest", "ti")
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	out := mustRunCLI(t, "", "query", "size(_.mentions)", "cc @[Ann](id:7) @[Bo](id:9)")
	assert.Equal(t, "2\n", out)

	out = mustRunCLI(t, "cc @[Ann](id:7)", "query", "_.mentions.map(m, m.id)", "-o", "json")
	assert.JSONEq(t, `["7"]`, out)

	out = mustRunCLI(t, "", "query", "_.text", "hi @[Tim](id:1)")
	assert.Equal(t, "hi @Tim\n", out)
}

func TestQueryRejectsUnknownField(t *testing.T) {
	_, _, err := runCLI(t, "", "query", "_.author", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author")
}

func TestEditScripted(t *testing.T) {
	people := writeFile(t, "people.yaml", peopleYAML)
	out := mustRunCLI(t, "", "edit", "-E", people, "--keys", "hi @tim<Tab>", "--keys", "<CR>")
	assert.Equal(t, "hi @[Tim Cook](id:1) \n", out)

	out = mustRunCLI(t, "", "edit", "-E", people, "--keys", "cc @nic<Tab>", "-o", "yaml")
	var res struct {
		Canonical string   `yaml:"canonical"`
		Submitted []string `yaml:"submitted"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, "cc @[Nic](id:3) ", res.Canonical)
	assert.Empty(t, res.Submitted)
}

func TestEditInitialFromStdin(t *testing.T) {
	out := mustRunCLI(t, "hi @[Tim](id:1)\n", "edit", "--initial", "-", "--keys", "!")
	assert.Equal(t, "hi @[Tim](id:1)!\n", out)
}

func TestReplay(t *testing.T) {
	people := writeFile(t, "people.yaml", peopleYAML)
	script := writeFile(t, "session.yaml", `initial: "hi "
events:
  - text: "hi @ti"
  - accept: "1"
  - select: {start: 0, end: 0}
  - text: "oh, hi @Tim Cook "
`)
	out := mustRunCLI(t, "", "replay", script, "-E", people)
	assert.Contains(t, out, "tracking at 3")
	assert.Contains(t, out, "canonical hi @[Tim Cook](id:1) \n")
	assert.Contains(t, out, "tracking closed")
	assert.True(t, strings.HasSuffix(out, "---\noh, hi @[Tim Cook](id:1) \n"), out)
}

func TestReplayEventList(t *testing.T) {
	script := writeFile(t, "events.ndjson", "{\"load\": \"@[Tim](id:1) hi\"}\n{\"reset\": true}\n")
	out := mustRunCLI(t, "", "replay", script, "-o", "json")

	var res struct {
		Document struct {
			Text string `json:"text"`
		} `json:"document"`
		Log []string `json:"log"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "", res.Document.Text)
	assert.Contains(t, res.Log, "removed Tim(1)")
}

func TestReplayErrors(t *testing.T) {
	script := writeFile(t, "bad.yaml", "events:\n  - accept: \"42\"\n  - {}\n")
	_, _, err := runCLI(t, "", "replay", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 1")

	out, stderr, err := runCLI(t, "", "replay", script, "--keep-going")
	require.NoError(t, err)
	assert.Contains(t, stderr, `unknown entity "42"`)
	assert.Contains(t, out, "event has no action")
}

func TestConfigCommands(t *testing.T) {
	out := mustRunCLI(t, "", "config", "get")
	assert.Contains(t, out, "trigger:")
	assert.Contains(t, out, "display_field: name")

	out = mustRunCLI(t, "", "config", "default")
	assert.Contains(t, out, "# mentionx default configuration.")

	out = mustRunCLI(t, "", "config", "path")
	assert.Equal(t, "(defaults)\n", out)
}

func TestConfigFileOverrides(t *testing.T) {
	path := writeFile(t, "custom.yaml", "# team config\ntrigger: \"+\"\n")

	out := mustRunCLI(t, "", "--config-file", path, "config", "get", "-o", "json")
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "+", cfg["trigger"])
	assert.Equal(t, "name", cfg["display_field"])

	out = mustRunCLI(t, "", "--config", path, "config", "get", "--raw")
	assert.True(t, strings.HasPrefix(out, "# team config"))
}

func TestConfigFromXDG(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "mentionx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("display_field: handle\n"), 0o600))
	t.Setenv("XDG_CONFIG_HOME", root)

	assert.Equal(t, filepath.Join(dir, "config.yaml"), resolveConfigPath(""))
	assert.Equal(t, "explicit.yaml", resolveConfigPath("explicit.yaml"))
}

func TestInvalidConfigFails(t *testing.T) {
	path := writeFile(t, "bad.yaml", "trigger: \"ab\"\n")
	_, _, err := runCLI(t, "", "--config", path, "decode", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger")
}

func TestVersion(t *testing.T) {
	out := mustRunCLI(t, "", "version")
	assert.True(t, strings.HasPrefix(out, "mentionx "), out)

	out = mustRunCLI(t, "", "version", "-o", "json")
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Contains(t, v, "version")
	assert.Contains(t, v, "go_version")
}

func TestLogLevelRange(t *testing.T) {
	_, _, err := runCLI(t, "", "-v", "500", "decode", "hi")
	assert.Error(t, err)
}

func TestTerminalDeviceNames(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in  string
		out string
	}{
		"windows": {in: "CONIN$", out: "CONOUT$"},
		"linux":   {in: "/dev/tty", out: "/dev/tty"},
		"darwin":  {in: "/dev/tty", out: "/dev/tty"},
	}

	for goos, expected := range tests {
		t.Run(goos, func(t *testing.T) {
			t.Parallel()

			in, out := terminalDeviceNames(goos)
			require.Equal(t, expected.in, in)
			require.Equal(t, expected.out, out)
		})
	}
}

func TestGetProgramOptions_PipedUsesTTYAndCleansUp(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return true }

	inFile, err := os.CreateTemp(t.TempDir(), "tty-in-*")
	require.NoError(t, err)
	outFile, err := os.CreateTemp(t.TempDir(), "tty-out-*")
	require.NoError(t, err)

	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return inFile, outFile, nil
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup, err := getProgramOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts, 3)

	// Both handles are closed, so a second close fails.
	cleanup()
	require.Error(t, inFile.Close())
	require.Error(t, outFile.Close())
}

func TestGetProgramOptions_NotPipedUsesDefaults(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return false }
	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return nil, nil, fmt.Errorf("should not be called")
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup, err := getProgramOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts, 1)
	require.NotPanics(t, cleanup)
}

func TestGetProgramOptions_NoTerminal(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return true }
	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return nil, nil, os.ErrNotExist
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	_, _, err := getProgramOptions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--keys")
}

func TestSuggestPaging(t *testing.T) {
	people := writeFile(t, "people.yaml", peopleYAML)

	all := strings.Split(strings.TrimSpace(mustRunCLI(t, "", "suggest", "-E", people)), "\n")
	require.Len(t, all, 3)

	out := mustRunCLI(t, "", "suggest", "-E", people, "--tail", "1")
	assert.Equal(t, all[2]+"\n", out)

	out = mustRunCLI(t, "", "suggest", "-E", people, "--offset", "1", "-n", "1")
	assert.Equal(t, all[1]+"\n", out)

	_, _, err := runCLI(t, "", "suggest", "-E", people, "-n", "1", "--tail", "1")
	assert.Error(t, err)
}

func TestQueryPaging(t *testing.T) {
	out := mustRunCLI(t, "", "query", "_.mentions.map(m, m.id)", "--offset", "1", "-o", "json", "@[A](id:1) @[B](id:2) @[C](id:3)")
	assert.JSONEq(t, `["2", "3"]`, out)
}
