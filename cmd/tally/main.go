package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/log"
)

var (
	envFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *log.Logger

	rootCmd = &cobra.Command{
		Use:   "tally",
		Short: "Personal finance ledger with budgets, trends and statistics",
		Long: `tally keeps a single-user ledger of income and expenses, evaluates
budgets against their current period and serves dashboard views over a
JSON API.

Configuration comes from the environment, optionally loaded from a .env file.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json); overrides LOG_FORMAT")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(alertsCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if err := cli.LoadEnvFile(envFile); err != nil {
		return err
	}

	loaded, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if logFormat != "" {
		loaded.LogFormat = logFormat
	}

	cfg = loaded
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	return nil
}
