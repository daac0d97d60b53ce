package cmd

import (
	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/mcpserver"
	"github.com/magick-mcp/magick-mcp/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tools over stdio",
	Long: `Serve check, magick, func_save, func_execute and func_list over the MCP stdio
transport. Logs go to stderr or the configured log file; stdout carries protocol traffic only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		srv := mcpserver.New(a.dispatcher(false), version.Version, a.log)
		if err := srv.ServeStdio(ctx); err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("mcp server stopped")
			return err
		}
		a.log.Info().Msg("mcp server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
