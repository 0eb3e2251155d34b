package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetVersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
