package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/mentionx/internal/formatter"
	"github.com/oakwood-commons/mentionx/pkg/loader"
	"github.com/oakwood-commons/mentionx/pkg/mention"
)

// replayScript is a recorded editing session. A file holding a list, or an
// NDJSON / multi-document stream, is read as the event list alone.
type replayScript struct {
	Initial string        `yaml:"initial"`
	Events  []replayEvent `yaml:"events"`
}

// replayEvent holds exactly one action.
type replayEvent struct {
	Load   *string            `yaml:"load"`
	Text   *string            `yaml:"text"`
	Caret  *int               `yaml:"caret"`
	Select *mention.Selection `yaml:"select"`
	Accept string             `yaml:"accept"`
	Open   bool               `yaml:"open"`
	Cancel bool               `yaml:"cancel"`
	Reset  bool               `yaml:"reset"`
}

type replayOut struct {
	Document formatter.Document    `json:"document" yaml:"document"`
	Tracking mention.TrackingState `json:"tracking" yaml:"tracking"`
	Log      []string              `json:"log" yaml:"log"`
}

func newReplayCommand() *cobra.Command {
	var (
		output    string
		keepGoing bool
	)
	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Run a recorded sequence of editor events",
		Long: `Feed a script of editor events through the mention editor and print the
notifications it raised and the final document.

Each event sets one key:

  load: <canonical>        replace the content
  text: <display text>     the text after an edit (caret: N, default inferred)
  select: {start, end}     move the selection
  accept: <entity id>      accept a suggestion from --entities
  open: true               insert the trigger at the caret
  cancel: true             close the mention session
  reset: true              clear everything`,
		Example: "  mentionx replay session.yaml -E people.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("output", output, "text", "json", "yaml"); err != nil {
				return err
			}
			_, lgr := runState(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			entities, err := loadEntities(cmd)
			if err != nil {
				return err
			}
			script, err := loadReplayScript(args[0])
			if err != nil {
				return err
			}

			var log []string
			opts, err := modelOptions(cfg)
			if err != nil {
				return err
			}
			opts = append(opts,
				mention.WithLogger(lgr),
				mention.WithSelectionSource(mention.PullSelection{}),
				mention.WithNotifier(mention.NotifierFuncs{
					CanonicalTextChanged: func(canonical string) {
						log = append(log, "canonical "+canonical)
					},
					TrackingStateChanged: func(s mention.TrackingState) {
						log = append(log, describeTracking(s))
					},
					MentionsRemoved: func(removed []mention.Entity) {
						names := make([]string, len(removed))
						for i, e := range removed {
							names[i] = e.Display(cfg.DisplayField) + "(" + e.ID + ")"
						}
						log = append(log, "removed "+strings.Join(names, ", "))
					},
				}),
			)
			ed, err := mention.NewEditor(opts...)
			if err != nil {
				return err
			}
			if script.Initial != "" {
				if err := ed.SetInitialCanonicalText(script.Initial); err != nil {
					return fmt.Errorf("initial: %w", err)
				}
			}

			for i, ev := range script.Events {
				err := applyReplayEvent(ed, ev, entities)
				if err == nil {
					continue
				}
				err = fmt.Errorf("event %d: %w", i+1, err)
				if !keepGoing {
					return err
				}
				warnf(cmd, "warning: %v\n", err)
				log = append(log, "error "+err.Error())
			}

			m := ed.Model()
			out := replayOut{Document: documentOf(m), Tracking: m.Tracking(), Log: log}
			if out.Log == nil {
				out.Log = []string{}
			}
			w := cmd.OutOrStdout()
			if output != "text" {
				return writeValue(w, out, output)
			}
			for _, line := range out.Log {
				fmt.Fprintln(w, line)
			}
			fmt.Fprintln(w, "---")
			fmt.Fprintln(w, m.Canonical())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "log failed events and continue")
	return cmd
}

func loadReplayScript(path string) (replayScript, error) {
	var script replayScript
	docs, err := loader.LoadFile(path)
	if err != nil {
		return script, fmt.Errorf("load script: %w", err)
	}
	var raw any = docs
	if len(docs) == 1 {
		raw = docs[0]
	}
	if _, ok := raw.([]any); ok {
		err = remarshal(raw, &script.Events)
	} else {
		err = remarshal(raw, &script)
	}
	if err != nil {
		return script, fmt.Errorf("decode script: %w", err)
	}
	return script, nil
}

// remarshal decodes a generic value into a typed one.
func remarshal(in any, out any) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func applyReplayEvent(ed *mention.Editor, ev replayEvent, entities []mention.Entity) error {
	prev := ed.Model().Text()
	switch {
	case ev.Load != nil:
		return ed.SetInitialCanonicalText(*ev.Load)
	case ev.Text != nil && ev.Caret != nil:
		return ed.OnTextChanged(prev, *ev.Text, mention.Caret(*ev.Caret))
	case ev.Text != nil:
		return ed.OnTextInput(prev, *ev.Text)
	case ev.Select != nil:
		_, err := ed.OnSelectionChanged(*ev.Select)
		return err
	case ev.Accept != "":
		for _, e := range entities {
			if e.ID == ev.Accept {
				return ed.OnSuggestionAccepted(e)
			}
		}
		return fmt.Errorf("unknown entity %q", ev.Accept)
	case ev.Open:
		return ed.OpenMentions()
	case ev.Cancel:
		return ed.CancelTracking()
	case ev.Reset:
		return ed.OnResetRequested()
	}
	return errors.New("event has no action")
}

func describeTracking(s mention.TrackingState) string {
	if !s.Active {
		return "tracking closed"
	}
	return fmt.Sprintf("tracking at %d keyword %q", s.TriggerIndex, s.Keyword)
}
