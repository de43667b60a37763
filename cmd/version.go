package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mentionx/pkg/settings"
)

type versionOut struct {
	settings.VersionInfo `yaml:",inline"`
	GoVersion            string `json:"go_version" yaml:"go_version"`
}

func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkChoice("output", output, "text", "json", "yaml"); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output == "text" {
				_, err := fmt.Fprintln(w, cliVersionString())
				return err
			}
			return writeValue(w, versionOut{VersionInfo: settings.VersionInformation, GoVersion: runtime.Version()}, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	return cmd
}
