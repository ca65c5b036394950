package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechbatch/cmd/speechbatch/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("format") {
			return output(cmd.OutOrStdout(), build.Get())
		}
		fmt.Fprintln(cmd.OutOrStdout(), build.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
