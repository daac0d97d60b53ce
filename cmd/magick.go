package cmd

import (
	"github.com/spf13/cobra"
)

var magickCmd = &cobra.Command{
	Use:   "magick [--workspace dir] <args...>",
	Short: "Run ImageMagick once with the given arguments",
	Long: `Run the ImageMagick binary directly with the given arguments, without a shell.
Flags for magick-mcp must come before the first argument; everything after it is passed through.
  magick-mcp magick --workspace ~/pics in.png -negate out.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspace, _ := cmd.Flags().GetString("workspace")
		dry, _ := cmd.Flags().GetBool("dry-run")

		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.dispatcher(dry).Magick(cmd.Context(), args, workspace)
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write([]byte(res.Stdout))
		_, _ = cmd.ErrOrStderr().Write([]byte(res.Stderr))
		if res.ExitCode != 0 {
			return &exitCodeError{code: res.ExitCode}
		}
		return nil
	},
}

func init() {
	magickCmd.Flags().SetInterspersed(false)
	magickCmd.Flags().StringP("workspace", "w", "", "Working directory for the command")
	magickCmd.Flags().Bool("dry-run", false, "Print the resolved command without running it")
	rootCmd.AddCommand(magickCmd)
}
