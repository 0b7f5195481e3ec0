package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/ftm/display"
	"github.com/teranos/ftm/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show ftm version information",
		Long:  `Display version, build time, commit hash, and platform information for the ftm binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(w, info)
			}
			fmt.Fprintln(w, info.String())
			fmt.Fprintf(w, "Platform: %s\n", info.Platform)
			fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
