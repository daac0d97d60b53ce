package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/recorder"
)

var funcRecordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record a function by typing its commands, one per line",
	Long: `Record a function from standard input. Type one ImageMagick command per line,
without the leading 'magick'. Finish with :end (or :save, :quit), Ctrl+D or Ctrl+Z.
Lines starting with # are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := normalizedName(cmd, args[0])

		fmt.Fprintln(cmd.ErrOrStderr(), "Enter commands, one per line. Finish with :end")
		commands, err := recorder.RecordCommands(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if len(commands) == 0 {
			return errors.New("no commands recorded")
		}

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.dispatcher(false).FuncSave(cmd.Context(), name, commands); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded '%s' with %d commands\n", name, len(commands))
		return nil
	},
}

func init() {
	funcCmd.AddCommand(funcRecordCmd)
}
