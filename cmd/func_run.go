package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var funcRunCmd = &cobra.Command{
	Use:   "run <name> --input <file>",
	Short: "Run a saved function against an input file",
	Long: `Run a saved function. Its commands run in order with $input replaced by the
given file, and stop at the first command that fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		workspace, _ := cmd.Flags().GetString("workspace")
		dry, _ := cmd.Flags().GetBool("dry-run")

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.dispatcher(dry).FuncExecute(cmd.Context(), args[0], input, workspace)
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		for _, s := range res.Steps {
			_, _ = out.Write([]byte(s.Stdout))
			_, _ = errOut.Write([]byte(s.Stderr))
		}
		if err != nil {
			return err
		}
		if res.FailedAt != nil {
			step := res.Steps[*res.FailedAt]
			fmt.Fprintf(errOut, "command %d failed with exit status %d\n", *res.FailedAt+1, step.ExitCode)
			return &exitCodeError{code: step.ExitCode}
		}
		return nil
	},
}

func init() {
	funcRunCmd.Flags().StringP("input", "i", "", "Input file substituted for $input")
	funcRunCmd.Flags().StringP("workspace", "w", "", "Working directory for the commands")
	funcRunCmd.Flags().Bool("dry-run", false, "Print the resolved commands without running them")
	_ = funcRunCmd.MarkFlagRequired("input")
	funcCmd.AddCommand(funcRunCmd)
}
