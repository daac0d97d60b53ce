package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/magick-mcp/magick-mcp/internal/config"
	"github.com/magick-mcp/magick-mcp/internal/dispatch"
	"github.com/magick-mcp/magick-mcp/internal/executor"
	"github.com/magick-mcp/magick-mcp/internal/logging"
	"github.com/magick-mcp/magick-mcp/internal/registry"
)

var rootCmd = &cobra.Command{
	Use:   "magick-mcp",
	Short: "magick-mcp exposes ImageMagick to MCP clients",
	Long: `magick-mcp runs ImageMagick commands on behalf of MCP clients and keeps a
store of reusable functions: named command sequences replayed against an input file.

Run 'magick-mcp serve' from your MCP client, or 'magick-mcp install' to register it.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "magick-mcp: run 'magick-mcp --help' to see available commands")
	},
}

// exitCodeError carries the exit status of a failed child process to main.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute executes the root command
func Execute() {
	// children run in their own process group, so the terminal's interrupt
	// reaches them only through context cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		os.Exit(ec.code)
	}
	os.Exit(1)
}

// app bundles what a command needs after loading configuration.
type app struct {
	cfg       config.Config
	log       zerolog.Logger
	logCloser io.Closer
	store     registry.Store
}

// loadApp reads configuration, builds the logger and opens the store.
// Interactive commands log at warn unless --log-level or the config say
// otherwise.
func loadApp(cmd *cobra.Command, interactive bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if b, _ := cmd.Flags().GetString("binary"); b != "" {
		cfg.Binary = b
	}
	level := cfg.Log.Level
	if interactive && os.Getenv(config.EnvLogLevel) == "" {
		level = "warn"
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	log, closer, err := logging.New(level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	store, err := registry.Open(cfg, log)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("open function store: %w", err)
	}
	return &app{cfg: cfg, log: log, logCloser: closer, store: store}, nil
}

func (a *app) dispatcher(dryRun bool) *dispatch.Dispatcher {
	timeout, _ := a.cfg.ExecTimeout()
	return dispatch.New(executor.New(dryRun), a.store,
		dispatch.WithBinary(a.cfg.Binary),
		dispatch.WithTimeout(timeout),
		dispatch.WithLogger(a.log),
	)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close store")
	}
	_ = a.logCloser.Close()
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("binary", "", "ImageMagick binary name or path (default from config, \"magick\")")
}
