package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/mentionx/pkg/logger"
	"github.com/oakwood-commons/mentionx/pkg/settings"
)

// NewRootCommand builds the mentionx command tree. Every call returns fresh
// flag state.
func NewRootCommand() *cobra.Command {
	params := settings.NewCliParams()
	var logLevel int

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "mentionx - mention-aware text tools",
		Long: `mentionx converts, inspects, and edits text with @-mentions.

Mentions are stored as canonical markup, @[display](id:id), and shown as
plain "@display" text. Entities for suggestions are read from a YAML, JSON,
NDJSON or TOML file given with --entities.`,
		Example: "\n  mentionx decode 'hi @[Tim](id:1)'\n" +
			"  mentionx suggest ti --entities people.yaml\n" +
			"  mentionx edit --entities people.yaml\n" +
			"  mentionx query '_.mentions.map(m, m.id)' 'cc @[Ann](id:7)'\n",
		Version:       cliVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if logLevel < -127 || logLevel > 127 {
				return fmt.Errorf("invalid --log-level %d", logLevel)
			}
			params.MinLogLevel = int8(-logLevel)
			params.ConfigPath = resolveConfigPath(params.ConfigPath)

			lgr := logger.Get(params.MinLogLevel).WithValues(logger.CommandKey, cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = settings.IntoContext(ctx, params)
			cmd.SetContext(logger.WithLogger(ctx, lgr))
			return nil
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&logLevel, "log-level", "v", 0, "log verbosity: 0 = errors and info, 1 = editor events, 2 = suggestion traces")
	flags.StringVar(&params.ConfigPath, "config", "", "path to a YAML or TOML config file (default $XDG_CONFIG_HOME/mentionx/config.yaml)")
	flags.StringVarP(&params.EntitiesPath, "entities", "E", "", "entities file for suggestions (yaml|json|ndjson|toml, - for stdin)")
	flags.BoolVar(&params.NoColor, "no-color", false, "disable color output")
	flags.BoolVarP(&params.IsQuiet, "quiet", "q", false, "suppress warnings")

	rootCmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "config-file" {
			name = "config"
		}
		return pflag.NormalizedName(name)
	})

	rootCmd.AddCommand(
		newDecodeCommand(),
		newEncodeCommand(),
		newRenderCommand(),
		newSuggestCommand(),
		newQueryCommand(),
		newEditCommand(),
		newReplayCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// cliVersionString builds the string printed by --version.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, runtime.Version())
}

// resolveConfigPath returns the explicit path if set, otherwise
// $XDG_CONFIG_HOME/mentionx/config.yaml or ~/.config/mentionx/config.yaml if
// present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
