package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that ImageMagick is installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.dispatcher(false).Check(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), res.Detail)
		if !res.OK {
			return errors.New("ImageMagick is not available")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
