// Package config loads the editor configuration. Defaults are embedded; a
// user file in YAML or TOML is merged over them key by key.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/mentionx/internal/trigger"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	defaultOnce sync.Once
	defaultCfg  Config
	defaultErr  error
)

// Config is the effective editor configuration.
type Config struct {
	Trigger         string      `json:"trigger" yaml:"trigger" toml:"trigger"`
	TriggerLocation string      `json:"trigger_location" yaml:"trigger_location" toml:"trigger_location"`
	DisplayField    string      `json:"display_field" yaml:"display_field" toml:"display_field"`
	KeywordPattern  string      `json:"keyword_pattern" yaml:"keyword_pattern" toml:"keyword_pattern"`
	Placeholder     string      `json:"placeholder" yaml:"placeholder" toml:"placeholder"`
	Suggestions     Suggestions `json:"suggestions" yaml:"suggestions" toml:"suggestions"`
	Styles          Styles      `json:"styles" yaml:"styles" toml:"styles"`
}

// Suggestions configures the suggestion list.
type Suggestions struct {
	Max              int    `json:"max" yaml:"max" toml:"max"`
	Filter           string `json:"filter" yaml:"filter" toml:"filter"`
	DetailField      string `json:"detail_field" yaml:"detail_field" toml:"detail_field"`
	ExcludeMentioned bool   `json:"exclude_mentioned" yaml:"exclude_mentioned" toml:"exclude_mentioned"`
}

// Styles holds lipgloss colors (hex or ANSI numbers).
type Styles struct {
	Mention     string `json:"mention" yaml:"mention" toml:"mention"`
	Selected    string `json:"selected" yaml:"selected" toml:"selected"`
	Placeholder string `json:"placeholder" yaml:"placeholder" toml:"placeholder"`
}

// fileConfig mirrors Config with pointers so unset keys keep their defaults.
type fileConfig struct {
	Trigger         *string `yaml:"trigger" toml:"trigger"`
	TriggerLocation *string `yaml:"trigger_location" toml:"trigger_location"`
	DisplayField    *string `yaml:"display_field" toml:"display_field"`
	KeywordPattern  *string `yaml:"keyword_pattern" toml:"keyword_pattern"`
	Placeholder     *string `yaml:"placeholder" toml:"placeholder"`
	Suggestions     struct {
		Max              *int    `yaml:"max" toml:"max"`
		Filter           *string `yaml:"filter" toml:"filter"`
		DetailField      *string `yaml:"detail_field" toml:"detail_field"`
		ExcludeMentioned *bool   `yaml:"exclude_mentioned" toml:"exclude_mentioned"`
	} `yaml:"suggestions" toml:"suggestions"`
	Styles struct {
		Mention     *string `yaml:"mention" toml:"mention"`
		Selected    *string `yaml:"selected" toml:"selected"`
		Placeholder *string `yaml:"placeholder" toml:"placeholder"`
	} `yaml:"styles" toml:"styles"`
}

// DefaultConfigYAML returns a copy of the embedded default config.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the embedded defaults.
func Default() (Config, error) {
	defaultOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			defaultErr = errors.New("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &defaultCfg); err != nil {
			defaultErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return defaultCfg, defaultErr
}

// Load returns the defaults merged with the file at path. An empty path
// returns the defaults. Files ending in .toml are decoded as TOML, anything
// else as YAML.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	file, err := decode(path, data)
	if err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg = merge(cfg, file)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte) (fileConfig, error) {
	var file fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return file, toml.Unmarshal(data, &file)
	}
	return file, yaml.Unmarshal(data, &file)
}

func merge(cfg Config, f fileConfig) Config {
	set(&cfg.Trigger, f.Trigger)
	set(&cfg.TriggerLocation, f.TriggerLocation)
	set(&cfg.DisplayField, f.DisplayField)
	set(&cfg.KeywordPattern, f.KeywordPattern)
	set(&cfg.Placeholder, f.Placeholder)
	set(&cfg.Suggestions.Max, f.Suggestions.Max)
	set(&cfg.Suggestions.Filter, f.Suggestions.Filter)
	set(&cfg.Suggestions.DetailField, f.Suggestions.DetailField)
	set(&cfg.Suggestions.ExcludeMentioned, f.Suggestions.ExcludeMentioned)
	set(&cfg.Styles.Mention, f.Styles.Mention)
	set(&cfg.Styles.Selected, f.Styles.Selected)
	set(&cfg.Styles.Placeholder, f.Styles.Placeholder)
	return cfg
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.TriggerRune(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.DisplayField == "" {
		return errors.New("display_field must not be empty")
	}
	if c.KeywordPattern != "" {
		if _, err := regexp.Compile(c.KeywordPattern); err != nil {
			return fmt.Errorf("keyword_pattern: %w", err)
		}
	}
	if c.Suggestions.Max < 0 {
		return fmt.Errorf("suggestions.max must not be negative, got %d", c.Suggestions.Max)
	}
	return nil
}

// TriggerRune returns the trigger as a single non-space rune.
func (c Config) TriggerRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(c.Trigger)
	if r == utf8.RuneError || size != len(c.Trigger) || unicode.IsSpace(r) {
		return 0, fmt.Errorf("trigger must be a single non-space character, got %q", c.Trigger)
	}
	return r, nil
}

// Policy parses trigger_location.
func (c Config) Policy() (trigger.Policy, error) {
	return trigger.ParsePolicy(c.TriggerLocation)
}

// YAML renders the configuration in the same layout as the defaults.
func (c Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
