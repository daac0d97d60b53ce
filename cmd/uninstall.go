package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/install"
	"github.com/magick-mcp/magick-mcp/internal/utils"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the magick-mcp entry from MCP client configs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dry, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")

		actions, err := install.PlanUninstall("")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Planned actions for uninstall:")
		for _, a := range actions {
			fmt.Fprintf(out, "- %s\n", a)
		}
		if dry {
			return nil
		}
		if !yes && !utils.Confirm(cmd.InOrStdin(), out, "Proceed with uninstall?") {
			fmt.Fprintln(out, "aborted by user (use --yes to skip confirmation)")
			return nil
		}
		if _, err := install.Uninstall("", false); err != nil {
			return err
		}
		fmt.Fprintln(out, "Uninstalled.")
		return nil
	},
}

func init() {
	uninstallCmd.Flags().Bool("dry-run", false, "Show planned actions without writing anything")
	uninstallCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(uninstallCmd)
}
