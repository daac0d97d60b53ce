package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/mcpserver"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [tool]",
	Short: "Print the JSON Schema of the MCP tool inputs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		tools := mcpserver.Tools()
		if len(args) == 1 {
			b, ok, err := mcpserver.SchemaJSON(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unknown tool %q", args[0])
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		for _, t := range tools {
			b, _, err := mcpserver.SchemaJSON(t.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n%s\n", t.Name, b)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
