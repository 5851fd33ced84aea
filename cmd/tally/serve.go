package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/cache"
	"tally/internal/cli"
	apphttp "tally/internal/http"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ledger, res, err := openLedger(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer closeBackend(res)

	caches := cache.NewManager(logger)
	caches.Register(ledger.Views())
	caches.StartCleanup(cfg.CacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		RateLimitRPM: cfg.RateLimitRPM,
		Location:     cfg.Location(),
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(cmd.Context(), logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
	})

	logger.Info("Starting tally server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone,
		"budget_alerts", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
