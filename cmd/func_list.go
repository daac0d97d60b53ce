package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/dispatch"
	"github.com/magick-mcp/magick-mcp/internal/registry"
)

var funcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved functions in the order they were saved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		filter, _ := cmd.Flags().GetString("filter")

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.dispatcher(false).FuncList(cmd.Context())
		if err != nil {
			return err
		}
		if filter != "" {
			res.Functions = filterEntries(res.Functions, filter)
		}
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		for _, f := range res.Functions {
			fmt.Fprintf(out, "- %s\n", f.Name)
			if verbose {
				for _, c := range f.Commands {
					fmt.Fprintf(out, "    %s\n", renderCommand(c))
				}
			}
		}
		return nil
	},
}

func filterEntries(entries []dispatch.FunctionEntry, query string) []dispatch.FunctionEntry {
	fns := make([]registry.Function, len(entries))
	for i, e := range entries {
		fns[i] = registry.Function{Name: e.Name, Commands: e.Commands}
	}
	out := []dispatch.FunctionEntry{}
	for _, f := range registry.Filter(fns, query) {
		out = append(out, dispatch.FunctionEntry{Name: f.Name, Commands: f.Commands})
	}
	return out
}

func init() {
	funcListCmd.Flags().String("filter", "", "Only show functions whose name or commands fuzzy-match this text")
	funcListCmd.Flags().Bool("json", false, "Print the list as JSON")
	funcListCmd.Flags().BoolP("verbose", "v", false, "Show each function's commands")
	funcCmd.AddCommand(funcListCmd)
}
