package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/exporter"
	"github.com/magick-mcp/magick-mcp/internal/importer"
)

var funcExportCmd = &cobra.Command{
	Use:   "export <file> [name...]",
	Short: "Export functions to a standalone SQLite file",
	Long: `Export the named functions, or all of them, into a new SQLite file.
The file can be loaded into another installation with 'magick-mcp func import'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := exporter.ExportFunctions(cmd.Context(), a.store, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d functions to %s\n", n, args[0])
		return nil
	},
}

var funcImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import functions from an exported SQLite file",
	Long: `Import every function from a file written by 'magick-mcp func export'.
Existing functions are never replaced: a clashing name is imported as <name>-import-N,
or left out with --skip-existing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetBool("skip-existing")
		policy := importer.Rename
		if skip {
			policy = importer.Skip
		}

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := importer.ImportFunctions(cmd.Context(), a.store, args[0], policy)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, n := range rep.Imported {
			fmt.Fprintf(out, "imported '%s'\n", n)
		}
		for orig, n := range rep.Renamed {
			fmt.Fprintf(out, "renamed '%s' to '%s'\n", orig, n)
		}
		for _, n := range rep.Skipped {
			fmt.Fprintf(out, "skipped '%s' (already exists)\n", n)
		}
		a.log.Info().Int("imported", len(rep.Imported)).Int("skipped", len(rep.Skipped)).Str("file", args[0]).Msg("functions imported")
		return nil
	},
}

func init() {
	funcImportCmd.Flags().Bool("skip-existing", false, "Skip functions whose name already exists instead of renaming them")
	funcCmd.AddCommand(funcExportCmd)
	funcCmd.AddCommand(funcImportCmd)
}
