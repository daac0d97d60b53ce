package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/nameutil"
	"github.com/magick-mcp/magick-mcp/internal/utils"
)

var funcDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := nameutil.Normalize(args[0])
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.store.Get(cmd.Context(), name); err != nil {
			return err
		}
		if !yes && !utils.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete '%s' permanently?", name)) {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
		if err := a.store.Delete(cmd.Context(), name); err != nil {
			return err
		}
		a.log.Info().Str("name", name).Msg("function deleted")
		fmt.Fprintf(cmd.OutOrStdout(), "deleted '%s'\n", name)
		return nil
	},
}

func init() {
	funcDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	funcCmd.AddCommand(funcDeleteCmd)
}
