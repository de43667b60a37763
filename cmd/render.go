package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/formatter"
)

func newRenderCommand() *cobra.Command {
	var (
		format string
		class  string
		href   string
	)
	cmd := &cobra.Command{
		Use:   "render [canonical|-]",
		Short: "Render canonical markup for a terminal or as HTML",
		Long: `Render canonical markup with its mentions highlighted.

  ansi  mentions in the configured mention color (plain with --no-color)
  html  the text as Markdown, mentions as <span class="mention" data-id="...">
        or, with --href, as links to <href><id>`,
		Example: "  mentionx render 'hi @[Tim](id:1)'\n  mentionx render -f html --href /users/ 'hi **@[Tim](id:1)**'",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("format", format, "ansi", "html"); err != nil {
				return err
			}
			params, _ := runState(cmd)
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
			if format == "html" {
				_, err = fmt.Fprintln(w, string(formatter.RenderHTML(m.Spans(), formatter.HTMLOptions{Class: class, HrefPrefix: href})))
				return err
			}
			_, err = fmt.Fprintln(w, formatter.RenderANSI(m.Spans(), formatter.NewStyles(cfg.Styles.Mention), params.NoColor))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "ansi", "output format: ansi|html")
	cmd.Flags().StringVar(&class, "class", "mention", "CSS class for mention spans (html)")
	cmd.Flags().StringVar(&href, "href", "", "render mentions as links to this prefix plus the entity id (html)")
	return cmd
}
