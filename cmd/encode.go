package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/formatter"
	"github.com/oakwood-commons/mentionx/pkg/core"
	"github.com/oakwood-commons/mentionx/pkg/loader"
)

func newEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [file|-]",
		Short: "Convert a document with mention ranges to canonical markup",
		Long: `Read a document in the shape printed by "decode -o json|yaml|toml":

  text: hi @Tim
  mentions:
    - {id: "1", start: 3, end: 6}

and print its canonical markup. Mentions must not overlap and must fit the
text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var docs []any
			if len(args) == 1 && args[0] != "-" {
				docs, err = loader.LoadFile(args[0])
			} else {
				var input string
				if input, err = readText(cmd, args, 0); err == nil {
					docs, err = loader.LoadData(input)
				}
			}
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			if len(docs) != 1 {
				return fmt.Errorf("expected one document, found %d", len(docs))
			}
			obj, ok := docs[0].(map[string]any)
			if !ok {
				return fmt.Errorf("document must be an object, got %T", docs[0])
			}

			doc, err := formatter.DocumentFromMap(obj)
			if err != nil {
				return err
			}
			engine, err := core.New(core.WithDisplayField(cfg.DisplayField))
			if err != nil {
				return err
			}
			out, err := engine.Encode(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	return cmd
}
