package main

import (
	"context"
	"fmt"

	"tally/internal/backend"
	"tally/internal/services"
)

// openLedger creates the configured backend and loads the ledger from it.
// The caller closes the returned backend once done with the ledger.
func openLedger(ctx context.Context, alerts bool) (*services.LedgerService, *backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if !alerts {
		backendCfg.AMQPURL = ""
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	ledger, err := services.Open(ctx, services.Options{
		Persister: res.Persister,
		Publisher: res.Publisher,
		Alerts:    alerts && cfg.BudgetAlerts,
		SeedDemo:  cfg.SeedDemo,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Location:  cfg.Location(),
		Logger:    logger,
	})
	if err != nil {
		_ = res.Close()
		return nil, nil, err
	}
	return ledger, res, nil
}

func closeBackend(res *backend.BackendResult) {
	if err := res.Close(); err != nil {
		logger.Error("Failed to close backend", "error", err)
	}
}
