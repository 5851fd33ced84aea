package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/backend"
	"tally/internal/storage"
	"tally/internal/store"
	"tally/internal/worker"
)

func workerCmd() *cobra.Command {
	var checkInterval time.Duration

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Record budget alerts published by the server",
		Long: `worker consumes budget alerts from the AMQP queue and records them in the
SQLite alert history. On startup and every --check-interval it re-evaluates
the budgets stored in SQLite, recording alerts that were never delivered.

Requires DATA_BACKEND=sqlite, AMQP_URL and BUDGET_ALERTS=true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), checkInterval)
		},
	}
	cmd.Flags().DurationVar(&checkInterval, "check-interval", time.Hour, "how often to re-check budgets for missed alerts")
	return cmd
}

func runWorker(ctx context.Context, checkInterval time.Duration) error {
	if !cfg.AlertsEnabled() {
		return errors.New("worker needs BUDGET_ALERTS=true and AMQP_URL")
	}
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	if backendCfg.Type != backend.SQLiteBackend {
		return fmt.Errorf("worker needs the sqlite backend, got %s", backendCfg.Type)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer closeBackend(res)

	client, ok := res.Publisher.(*amqp.Client)
	if !ok {
		return errors.New("AMQP broker unavailable")
	}

	logger.Info("Starting tally worker", "check_interval", checkInterval)
	alerts := worker.NewAlertWorker(res.Repository, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeBudgetAlerts(gctx, alerts.HandleAlert)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		checkBudgets(gctx, res.Repository, alerts)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				checkBudgets(gctx, res.Repository, alerts)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		return err
	}
	logger.Info("Worker shutdown complete")
	return nil
}

// checkBudgets reloads the ledger from SQLite and records alerts for budgets
// at their ceiling. Failures are logged and retried on the next tick.
func checkBudgets(ctx context.Context, repo *storage.SQLiteRepository, alerts *worker.AlertWorker) {
	snap, ok, err := repo.Load(ctx)
	if err != nil {
		logger.Error("Failed to load ledger for budget check", "error", err)
		return
	}
	if !ok {
		logger.Debug("Ledger is empty, skipping budget check")
		return
	}
	r, err := store.NewFromSnapshot(snap)
	if err != nil {
		logger.Error("Failed to restore ledger for budget check", "error", err)
		return
	}
	if _, err := alerts.StartupCheck(ctx, r, time.Now().In(cfg.Location())); err != nil && ctx.Err() == nil {
		logger.Error("Budget check failed", "error", err)
	}
}
