package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/completion"
	"github.com/oakwood-commons/mentionx/internal/limiter"
	"github.com/oakwood-commons/mentionx/internal/markup"
)

type suggestionOut struct {
	ID      string         `json:"id" yaml:"id" toml:"id"`
	Label   string         `json:"label" yaml:"label" toml:"label"`
	Detail  string         `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
	Match   string         `json:"match" yaml:"match" toml:"match"`
	Score   int            `json:"score" yaml:"score" toml:"score"`
	Fields  map[string]any `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Mention string         `json:"mention" yaml:"mention" toml:"mention"`
}

func newSuggestCommand() *cobra.Command {
	var (
		output  string
		filter  string
		limit   int
		offset  int
		tail    int
		exclude []string
		fields  int
	)
	cmd := &cobra.Command{
		Use:   "suggest [keyword]",
		Short: "List the mention suggestions for a keyword",
		Long: `Rank the entities from --entities against a keyword the way the editor
does: exact, prefix, word prefix, substring, id and fuzzy matches, best
first. An empty keyword lists every entity that has a label.

--filter takes a CEL predicate over the entity as "_" and the typed keyword
as "keyword", for example: _.team == "core" && !_.away`,
		Example: "  mentionx suggest ti -E people.yaml\n  mentionx suggest -E people.yaml --filter '_.team == \"core\"' -o json",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("output", output, "text", "json", "yaml", "toml"); err != nil {
				return err
			}
			params, lgr := runState(cmd)
			if params.EntitiesPath == "" {
				return errors.New("suggest needs --entities")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			entities, err := loadEntities(cmd)
			if err != nil {
				return err
			}
			if filter == "" {
				filter = cfg.Suggestions.Filter
			}
			engine, err := completion.NewFromEntities(entities, completion.Settings{
				DisplayField: cfg.DisplayField,
				Filter:       filter,
				DetailField:  cfg.Suggestions.DetailField,
				Logger:       lgr,
			})
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") && tail == 0 {
				limit = cfg.Suggestions.Max
			}
			page := limiter.Config{Limit: limit, Offset: offset, Tail: tail}
			if err := page.Validate(); err != nil {
				return err
			}

			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			candidates, err := engine.Suggest(keyword, completion.Context{
				DisplayField: cfg.DisplayField,
				Exclude:      exclude,
			})
			if err != nil {
				return err
			}
			candidates = limiter.Slice(page, candidates)

			w := cmd.OutOrStdout()
			if output != "text" {
				out := make([]suggestionOut, len(candidates))
				for i, c := range candidates {
					out[i] = suggestionOut{
						ID:      c.Entity.ID,
						Label:   c.Display,
						Detail:  c.Detail,
						Match:   c.Match.String(),
						Score:   c.Score,
						Fields:  c.Entity.Fields,
						Mention: markup.Token(c.Display, c.Entity.ID),
					}
				}
				if output == "toml" {
					return writeValue(w, map[string]any{"suggestions": out}, output)
				}
				return writeValue(w, out, output)
			}

			prefix := []rune(markup.MentionPrefix)[0]
			for _, c := range candidates {
				if fields == 0 {
					fmt.Fprintln(w, completion.FormatOneLiner(prefix, c))
					continue
				}
				for _, line := range completion.FormatLines(prefix, c, cfg.DisplayField, fields) {
					fmt.Fprintln(w, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml|toml")
	cmd.Flags().StringVar(&filter, "filter", "", "CEL predicate narrowing candidates (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum suggestions, 0 = all (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip the first N suggestions")
	cmd.Flags().IntVar(&tail, "tail", 0, "show only the last N suggestions")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "entity ids to leave out")
	cmd.Flags().IntVar(&fields, "fields", 0, "show up to N extra entity fields per suggestion in text output")
	return cmd
}
