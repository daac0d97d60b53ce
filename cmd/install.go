package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/install"
	"github.com/magick-mcp/magick-mcp/internal/utils"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register magick-mcp with an MCP client",
	Long: `Add a magick-mcp entry to the MCP server list of Cursor (~/.cursor/mcp.json),
Claude (~/.claude.json) or both. Other servers in those files are kept. Use --dry-run to preview.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		clients, _ := cmd.Flags().GetStringSlice("client")
		if len(clients) == 0 {
			clients = []string{install.ClientBoth}
		}
		exe, _ := cmd.Flags().GetString("exe")
		dry, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")
		opts := install.Options{Clients: clients, Exe: exe, DryRun: dry}

		actions, err := install.PlanInstall(opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Planned actions for install:")
		for _, a := range actions {
			fmt.Fprintf(out, "- %s\n", a)
		}
		if dry {
			return nil
		}
		if !yes && !utils.Confirm(cmd.InOrStdin(), out, "Proceed with install?") {
			fmt.Fprintln(out, "aborted by user (use --yes to skip confirmation)")
			return nil
		}
		if _, err := install.ExecuteInstall(opts); err != nil {
			return err
		}
		fmt.Fprintln(out, "Installed. Restart your MCP client to pick up the change.")
		return nil
	},
}

func init() {
	installCmd.Flags().StringSlice("client", nil, "Client to configure: cursor, claude or both (default both)")
	installCmd.Flags().String("exe", "", "Command the client should launch (default: this executable)")
	installCmd.Flags().Bool("dry-run", false, "Show planned actions without writing anything")
	installCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(installCmd)
}
