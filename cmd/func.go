package cmd

import (
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

var funcCmd = &cobra.Command{
	Use:   "func",
	Short: "Manage saved functions",
	Long: `Manage saved functions: named, ordered ImageMagick commands where $input
is replaced by the input file at run time.`,
}

// parseCommands splits each command line with shell quoting rules. No
// variable or glob expansion happens, so $input survives intact.
func parseCommands(lines []string) ([][]string, error) {
	out := make([][]string, 0, len(lines))
	for _, l := range lines {
		words, err := shellquote.Split(l)
		if err != nil {
			return nil, fmt.Errorf("parse command %q: %w", l, err)
		}
		out = append(out, words)
	}
	return out, nil
}

// renderCommand joins argv back into one line that parseCommands accepts.
func renderCommand(argv []string) string {
	return shellquote.Join(argv...)
}

func init() {
	rootCmd.AddCommand(funcCmd)
}
