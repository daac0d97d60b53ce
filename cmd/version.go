package cmd

import (
	"fmt"

	"github.com/magick-mcp/magick-mcp/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "magick-mcp %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
