package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/install"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which MCP clients have magick-mcp registered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := install.GetStatus("")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "magick-mcp status:")
		for _, s := range st {
			if s.Registered {
				fmt.Fprintf(out, "- %s: registered in %s (command: %s)\n", s.Client, s.ConfigPath, s.Command)
			} else {
				fmt.Fprintf(out, "- %s: not registered (config: %s)\n", s.Client, s.ConfigPath)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
