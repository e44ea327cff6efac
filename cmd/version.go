package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fbz-tec/docvault/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docvault %s\nBuild time: %s\nGit commit: %s\n",
			version.AppVersion, version.BuildTime, version.GitCommit)
	},
}
