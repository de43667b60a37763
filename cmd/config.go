package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newConfigGetCommand(), newConfigDefaultCommand(), newConfigPathCommand())
	return cmd
}

func newConfigGetCommand() *cobra.Command {
	var (
		output string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the defaults merged with the config file",
		Long: `Print the configuration mentionx runs with: the built-in defaults merged
with --config or $XDG_CONFIG_HOME/mentionx/config.yaml. With --raw the config
file is printed as written, comments included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkChoice("output", output, "yaml", "json", "toml"); err != nil {
				return err
			}
			params, _ := runState(cmd)
			w := cmd.OutOrStdout()
			if raw {
				if params.ConfigPath == "" {
					_, err := w.Write(config.DefaultConfigYAML())
					return err
				}
				data, err := os.ReadFile(params.ConfigPath)
				if err != nil {
					return fmt.Errorf("read config: %w", err)
				}
				_, err = w.Write(data)
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if output == "yaml" {
				out, err := cfg.YAML()
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(w, out)
				return err
			}
			return writeValue(w, cfg, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json|toml")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the config file unmodified")
	return cmd
}

func newConfigDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print the built-in default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultConfigYAML())
			return err
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, _ := runState(cmd)
			if params.ConfigPath == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "(defaults)")
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), params.ConfigPath)
			return err
		},
	}
}
