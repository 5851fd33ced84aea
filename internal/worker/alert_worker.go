// Package worker consumes budget alerts published by the ledger service.
package worker

import (
	"context"
	"fmt"
	"time"

	"tally/internal/amqp"
	"tally/internal/budget"
	"tally/internal/log"
	"tally/internal/storage"
	"tally/internal/store"
)

// AlertRecorder persists alerts, reporting false for ones already stored.
type AlertRecorder interface {
	RecordAlert(ctx context.Context, a storage.AlertRecord) (bool, error)
}

// AlertWorker records budget alerts in the alert history.
type AlertWorker struct {
	recorder AlertRecorder
	logger   *log.Logger
	events   *log.StructuredLogger
}

func NewAlertWorker(recorder AlertRecorder, logger *log.Logger) *AlertWorker {
	logger = logger.WithComponent(log.ComponentWorker)
	return &AlertWorker{
		recorder: recorder,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
	}
}

// HandleAlert processes a single budget alert message from AMQP. Redelivered
// alerts are acknowledged without being recorded twice.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	_, err := w.record(ctx, msg)
	return err
}

// record stores msg and reports whether it was new.
func (w *AlertWorker) record(ctx context.Context, msg *amqp.BudgetAlertMessage) (bool, error) {
	w.logger.DebugContext(ctx, "Processing budget alert",
		log.FieldMessageID, msg.MessageID,
		log.FieldBudgetID, msg.BudgetID)

	created, err := w.recorder.RecordAlert(ctx, storage.AlertRecord{
		MessageID:    msg.MessageID,
		BudgetID:     msg.BudgetID,
		CategoryID:   msg.CategoryID,
		CategoryName: msg.CategoryName,
		Amount:       msg.Amount,
		Spent:        msg.Spent,
		Period:       msg.Period,
		Window:       msg.Window(),
		CreatedAt:    msg.Timestamp,
	})
	if err != nil {
		return false, fmt.Errorf("record alert %s: %w", msg.MessageID, err)
	}
	if !created {
		w.logger.DebugContext(ctx, "Budget alert already recorded", log.FieldMessageID, msg.MessageID)
		return false, nil
	}

	w.events.LogBudgetExceeded(ctx, msg.BudgetID, msg.CategoryID, string(msg.Period), msg.Amount, msg.Spent)
	return true, nil
}

// StartupCheck records alerts for budgets already at their ceiling in r and
// returns how many were new. It covers alerts lost while the worker or
// broker was down; alerts that were delivered are skipped because their ids
// match.
func (w *AlertWorker) StartupCheck(ctx context.Context, r store.Reader, now time.Time) (int, error) {
	names := make(map[string]string)
	for _, c := range r.Categories() {
		names[c.ID] = c.Name
	}

	atCeiling, recorded := 0, 0
	for _, s := range budget.StatusesOf(r.Budgets(), r.Transactions(), now) {
		if !budget.AtCeiling(s) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return recorded, err
		}
		atCeiling++
		created, err := w.record(ctx, amqp.NewBudgetAlertMessage(s, names[s.Budget.CategoryID]))
		if err != nil {
			return recorded, err
		}
		if created {
			recorded++
		}
	}

	w.logger.InfoContext(ctx, "Startup budget check completed",
		"at_ceiling", atCeiling,
		"recorded", recorded)
	return recorded, nil
}
