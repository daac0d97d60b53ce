package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/nameutil"
)

var funcSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a named function",
	Long: `Save a named function. Each -c flag is one ImageMagick command, without the
leading 'magick'. Quote $input so your shell leaves it alone:
  magick-mcp func save gray_and_inverted \
    -c '$input -colorspace Gray $input-gray.jpg' \
    -c '$input -negate $input-inverted.jpg'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := normalizedName(cmd, args[0])
		lines, _ := cmd.Flags().GetStringArray("command")
		commands, err := parseCommands(lines)
		if err != nil {
			return err
		}

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.dispatcher(false).FuncSave(cmd.Context(), name, commands); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved '%s' with %d commands\n", name, len(commands))
		return nil
	},
}

// normalizedName applies the same name normalization the MCP tools use and
// warns when it changed what the user typed.
func normalizedName(cmd *cobra.Command, raw string) string {
	name, changed := nameutil.Normalize(raw)
	if changed {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: removed surrounding whitespace or invisible characters from name; using %q\n", name)
	}
	return name
}

func init() {
	funcSaveCmd.Flags().StringArrayP("command", "c", []string{}, "Command to add to the function (can be repeated)")
	funcCmd.AddCommand(funcSaveCmd)
}
