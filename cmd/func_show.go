package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/nameutil"
)

var funcShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show details for a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := nameutil.Normalize(args[0])
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.store.Get(cmd.Context(), name)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name: %s\n", f.Name)
		if !f.CreatedAt.IsZero() {
			fmt.Fprintf(out, "Created: %s\n", f.CreatedAt.Local().Format(time.RFC3339))
		}
		fmt.Fprintln(out, "Commands:")
		for i, c := range f.Commands {
			fmt.Fprintf(out, "%d: %s\n", i+1, renderCommand(c))
		}
		return nil
	},
}

func init() {
	funcCmd.AddCommand(funcShowCmd)
}
