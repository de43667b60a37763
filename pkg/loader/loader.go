// Package loader reads the entities that can be mentioned from JSON, NDJSON,
// YAML (single or multi-document) or TOML input.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a detected input format.
type Format int

const (
	FormatYAML Format = iota
	FormatMultiYAML
	FormatJSON
	FormatNDJSON
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatMultiYAML:
		return "yaml-multi"
	case FormatJSON:
		return "json"
	case FormatNDJSON:
		return "ndjson"
	case FormatTOML:
		return "toml"
	default:
		return "yaml"
	}
}

var (
	tomlSection  = regexp.MustCompile(`^\s*\[{1,2}(?:[A-Za-z_][A-Za-z0-9_-]*|"[^"]+"|'[^']+')(?:\.(?:[A-Za-z_][A-Za-z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[A-Za-z_][A-Za-z0-9_-]*|"[^"]+"|'[^']+')(?:\.(?:[A-Za-z_][A-Za-z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// DetectFormat guesses the format of input. TOML is checked before JSON
// because "[section]" headers look like arrays.
func DetectFormat(input string) Format {
	input = strings.TrimSpace(input)
	lines := strings.Split(input, "\n")
	switch {
	case strings.HasPrefix(input, "---") || strings.Contains(input, "\n---"):
		return FormatMultiYAML
	case looksLikeNDJSON(lines):
		return FormatNDJSON
	case looksLikeTOML(lines):
		return FormatTOML
	case strings.HasPrefix(input, "{") || strings.HasPrefix(input, "["):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// FormatForPath maps a file extension to a format.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".ndjson", ".jsonl":
		return FormatNDJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return 0, false
}

// looksLikeNDJSON wants several non-empty lines, most of them starting like a
// JSON value, so YAML lists are not mistaken for it.
func looksLikeNDJSON(lines []string) bool {
	jsonLines, nonEmpty := 0, 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			jsonLines++
		}
	}
	return nonEmpty > 1 && jsonLines > nonEmpty/2
}

func looksLikeTOML(lines []string) bool {
	keyValues, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			return true
		}
		if tomlKeyValue.MatchString(line) {
			keyValues++
		}
	}
	return nonEmpty > 0 && keyValues > nonEmpty/2
}

// Decode parses input in the given format. Every document or NDJSON line
// becomes one element of the result.
func Decode(input string, format Format) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty input")
	}
	switch format {
	case FormatJSON:
		var doc any
		if err := json.Unmarshal([]byte(input), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return []any{doc}, nil
	case FormatNDJSON:
		return decodeNDJSON(input)
	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal([]byte(input), &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return []any{doc}, nil
	default:
		return decodeYAML(input)
	}
}

// LoadData detects the format of input and decodes it. JSON that fails to
// parse is retried as YAML, which accepts flow mappings like {a: 1}.
func LoadData(input string) ([]any, error) {
	format := DetectFormat(input)
	docs, err := Decode(input, format)
	if err != nil && format == FormatJSON {
		if docs, yerr := decodeYAML(strings.TrimSpace(input)); yerr == nil {
			return docs, nil
		}
	}
	return docs, err
}

// LoadFile decodes the file at path, trusting a known extension over
// content detection. "-" reads standard input.
func LoadFile(path string) ([]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if format, ok := FormatForPath(path); ok {
		return Decode(string(data), format)
	}
	return LoadData(string(data))
}

func decodeYAML(input string) ([]any, error) {
	dec := yaml.NewDecoder(strings.NewReader(input))
	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents found in YAML input")
	}
	return docs, nil
}

// decodeNDJSON fails on the first bad line; entity feeds are machine written.
func decodeNDJSON(input string) ([]any, error) {
	var docs []any
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", i+1, err)
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, errors.New("no data found in input")
	}
	return docs, nil
}
