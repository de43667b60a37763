package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/cel"
	"github.com/oakwood-commons/mentionx/internal/limiter"
	"github.com/oakwood-commons/mentionx/pkg/core"
)

var documentFields = map[string]bool{"text": true, "canonical": true, "mentions": true}

func newQueryCommand() *cobra.Command {
	var (
		output    string
		functions bool
		page      limiter.Config
	)
	cmd := &cobra.Command{
		Use:   "query <expression> [canonical|-]",
		Short: "Evaluate a CEL expression over a parsed message",
		Long: `Parse canonical markup and evaluate a CEL expression with the document
bound to "_":

  _.text        display text
  _.canonical   the input markup
  _.mentions    list of {id, label, start, end, fields}`,
		Example: "  mentionx query '_.mentions.map(m, m.id)' 'cc @[Ann](id:7) @[Bo](id:9)'\n" +
			"  mentionx query 'size(_.mentions) > 0' - < message.txt\n" +
			"  mentionx query --functions",
		Args: func(cmd *cobra.Command, args []string) error {
			if functions {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("output", output, "text", "json", "yaml"); err != nil {
				return err
			}
			if err := page.Validate(); err != nil {
				return err
			}
			eval, err := cel.NewEvaluator()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if functions {
				for _, fn := range eval.Functions(nil) {
					fmt.Fprintln(w, fn)
				}
				return nil
			}

			expr := args[0]
			fields, err := eval.ReferencedFields(expr)
			if err != nil {
				return err
			}
			for _, f := range fields {
				if !documentFields[f] {
					return fmt.Errorf("unknown document field %q (use text, canonical or mentions)", f)
				}
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			input, err := readText(cmd, args, 1)
			if err != nil {
				return err
			}
			m, err := parseCanonical(cmd, cfg, input)
			if err != nil {
				return err
			}
			engine, err := core.New(core.WithEvaluator(eval), core.WithDisplayField(cfg.DisplayField))
			if err != nil {
				return err
			}
			result, err := engine.Query(expr, documentOf(m))
			if err != nil {
				return err
			}
			result = page.Apply(result)
			if output != "text" {
				return writeValue(w, result, output)
			}
			return printResult(w, result)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	cmd.Flags().IntVar(&page.Limit, "limit", 0, "keep at most N items of a list or map result")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "skip the first N items of a list or map result")
	cmd.Flags().IntVar(&page.Tail, "tail", 0, "keep only the last N items of a list or map result")
	cmd.Flags().BoolVar(&functions, "functions", false, "list the available CEL functions")
	return cmd
}

// printResult writes scalars bare and everything else as YAML.
func printResult(w io.Writer, v any) error {
	switch t := v.(type) {
	case nil:
		_, err := fmt.Fprintln(w, "null")
		return err
	case string, bool, int64, uint64, float64, int:
		_, err := fmt.Fprintln(w, t)
		return err
	case []byte:
		_, err := fmt.Fprintln(w, string(t))
		return err
	}
	return writeValue(w, v, "yaml")
}
