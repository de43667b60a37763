package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/config"
	"github.com/oakwood-commons/mentionx/internal/formatter"
	"github.com/oakwood-commons/mentionx/pkg/loader"
	"github.com/oakwood-commons/mentionx/pkg/logger"
	"github.com/oakwood-commons/mentionx/pkg/mention"
	"github.com/oakwood-commons/mentionx/pkg/settings"
)

func runState(cmd *cobra.Command) (*settings.Run, logr.Logger) {
	ctx := cmd.Context()
	return settings.FromContextOrDefault(ctx), logger.FromContext(ctx)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	params, lgr := runState(cmd)
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	lgr.V(1).Info("config loaded", "path", params.ConfigPath, "trigger", cfg.Trigger, "displayField", cfg.DisplayField)
	return cfg, nil
}

func loadEntities(cmd *cobra.Command) ([]mention.Entity, error) {
	params, lgr := runState(cmd)
	if params.EntitiesPath == "" {
		return nil, nil
	}
	entities, err := loader.LoadEntities(params.EntitiesPath)
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	lgr.V(1).Info("entities loaded", "path", params.EntitiesPath, "count", len(entities))
	return entities, nil
}

// readText returns args[i], or standard input when the argument is missing
// or "-". A single trailing newline from stdin is dropped.
func readText(cmd *cobra.Command, args []string, i int) (string, error) {
	if i < len(args) && args[i] != "-" {
		return args[i], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

func modelOptions(cfg config.Config) ([]mention.Option, error) {
	trig, err := cfg.TriggerRune()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return []mention.Option{
		mention.WithTrigger(trig),
		mention.WithPolicy(policy),
		mention.WithKeywordPattern(cfg.KeywordPattern),
		mention.WithDisplayField(cfg.DisplayField),
	}, nil
}

// parseCanonical loads canonical text into a model. Malformed markup is kept
// as plain text with a warning.
func parseCanonical(cmd *cobra.Command, cfg config.Config, canonical string) (mention.Model, error) {
	opts, err := modelOptions(cfg)
	if err != nil {
		return mention.Model{}, err
	}
	m, err := mention.New(opts...)
	if err != nil {
		return m, err
	}
	m, _, err = m.SetCanonicalText(canonical)
	var malformed *mention.MalformedMarkupError
	if errors.As(err, &malformed) {
		warnf(cmd, "warning: %v; treating input as plain text\n", err)
		return m, nil
	}
	return m, err
}

func documentOf(m mention.Model) formatter.Document {
	return formatter.NewDocument(m.Text(), m.Canonical(), m.Ranges())
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	params, _ := runState(cmd)
	if params.IsQuiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

// writeValue prints v as json, yaml or toml.
func writeValue(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		out, err := formatter.FormatYAML(v, formatter.YAMLFormatOptions{LiteralBlockStrings: true})
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case "toml":
		data, err := toml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal toml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported output %q", format)
	}
}

func checkChoice(flag, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid --%s %q (use %s)", flag, value, strings.Join(allowed, "|"))
}
