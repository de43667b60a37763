package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/formatter"
)

func newDecodeCommand() *cobra.Command {
	var (
		output   string
		noFields bool
		maxLen   int
	)
	cmd := &cobra.Command{
		Use:   "decode [canonical|-]",
		Short: "Convert canonical markup to display text and mentions",
		Long: `Parse canonical markup such as "hi @[Tim](id:1)" and print the display
text, or the whole document with its mention ranges. Mention ends are
inclusive rune offsets.`,
		Example: "  mentionx decode 'hi @[Tim](id:1)'\n  echo 'hi @[Tim](id:1)' | mentionx decode -o tree",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("output", output, "text", "tree", "json", "yaml", "toml"); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			input, err := readText(cmd, args, 0)
			if err != nil {
				return err
			}
			m, err := parseCanonical(cmd, cfg, input)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch output {
			case "text":
				_, err = fmt.Fprintln(w, m.Text())
				return err
			case "tree":
				_, err = fmt.Fprint(w, formatter.FormatAsTree(documentOf(m), formatter.TreeOptions{NoFields: noFields, MaxStringLen: maxLen}))
				return err
			default:
				return writeValue(w, documentOf(m), output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|tree|json|yaml|toml")
	cmd.Flags().BoolVar(&noFields, "tree-no-fields", false, "hide entity fields in tree output")
	cmd.Flags().IntVar(&maxLen, "tree-max-string", 0, "truncate long strings in tree output (0 = unlimited)")
	return cmd
}
