package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/mentionx/pkg/tui"
)

var (
	stdinIsPiped     = func() bool { return !term.IsTerminal(int(os.Stdin.Fd())) }
	openTerminalIOFn = openTerminalIO
)

func newEditCommand() *cobra.Command {
	var (
		output  string
		initial string
		filter  string
		keys    []string
		once    bool
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Compose a message with @-mention suggestions",
		Long: `Open a single-line editor. Type the trigger (default "@") to list
suggestions from --entities, then:

  up/down     move through suggestions
  tab, enter  insert the highlighted mention
  esc         close the suggestions (again to quit)
  ctrl+t      insert the trigger at the caret
  enter       send the message (canonical form is printed on exit)
  ctrl+c      quit

Deleting into a mention removes the whole mention. With --keys the session
runs without a terminal; keys use <Tab>, <CR>, <BS>, <Esc>, <Left>, <C-t>...`,
		Example: "  mentionx edit -E people.yaml\n  mentionx edit -E people.yaml --keys 'hi @ti<Tab>' --keys '<CR>'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkChoice("output", output, "text", "json", "yaml"); err != nil {
				return err
			}
			params, lgr := runState(cmd)
			entities, err := loadEntities(cmd)
			if err != nil {
				return err
			}
			if initial == "-" {
				if initial, err = readText(cmd, nil, 0); err != nil {
					return err
				}
			}
			opts := tui.Options{
				ConfigPath:  params.ConfigPath,
				Entities:    entities,
				Filter:      filter,
				Initial:     initial,
				SubmitQuits: once,
				NoColor:     params.NoColor,
				Logger:      lgr,
			}

			var res tui.Result
			if len(keys) > 0 {
				res, err = tui.Script(opts, keys)
			} else {
				progOpts, cleanup, perr := getProgramOptions(cmd.Context())
				if perr != nil {
					return perr
				}
				defer cleanup()
				opts.ProgramOptions = progOpts
				res, err = tui.Run(opts)
			}
			if err != nil {
				return err
			}
			lgr.V(1).Info("edit session ended", "submitted", len(res.Submitted))

			w := cmd.OutOrStdout()
			if output != "text" {
				return writeValue(w, res, output)
			}
			for _, msg := range res.Submitted {
				fmt.Fprintln(w, msg)
			}
			if len(keys) > 0 && res.Canonical != "" {
				fmt.Fprintln(w, res.Canonical)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format for the session result: text|json|yaml")
	cmd.Flags().StringVar(&initial, "initial", "", "canonical text to start with (- reads stdin)")
	cmd.Flags().StringVar(&filter, "filter", "", "CEL predicate narrowing suggestions (default from config)")
	cmd.Flags().StringArrayVar(&keys, "keys", nil, "run without a terminal, pressing these keys (repeatable)")
	cmd.Flags().BoolVar(&once, "once", false, "exit after the first message is sent")
	return cmd
}

// getProgramOptions reads keys from the terminal device when stdin is
// piped, so "mentionx edit --initial - < draft.txt" still gets a keyboard.
func getProgramOptions(ctx context.Context) ([]tea.ProgramOption, func(), error) {
	cleanup := func() {}
	if ctx == nil {
		ctx = context.Background()
	}
	if !stdinIsPiped() {
		return []tea.ProgramOption{tea.WithContext(ctx)}, cleanup, nil
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		return nil, cleanup, fmt.Errorf("edit needs a terminal (or use --keys): %w", err)
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut))
	}
	return opts, cleanup, nil
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}
