package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
	"tally/internal/store"
)

type memRecorder struct {
	records map[string]storage.AlertRecord
	err     error
}

func (m *memRecorder) RecordAlert(_ context.Context, a storage.AlertRecord) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.records == nil {
		m.records = make(map[string]storage.AlertRecord)
	}
	if _, ok := m.records[a.MessageID]; ok {
		return false, nil
	}
	m.records[a.MessageID] = a
	return true, nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Component: "test", Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestHandleAlertRecordsOnce(t *testing.T) {
	rec := &memRecorder{}
	w := NewAlertWorker(rec, testLogger())
	msg := &amqp.BudgetAlertMessage{
		MessageID: "m-1",
		BudgetID:  "budget-6",
		Amount:    100,
		Spent:     120,
		Period:    core.Monthly,
	}

	require.NoError(t, w.HandleAlert(context.Background(), msg))
	require.NoError(t, w.HandleAlert(context.Background(), msg))

	require.Len(t, rec.records, 1)
	assert.Equal(t, 120.0, rec.records["m-1"].Spent)
	assert.Equal(t, core.Monthly, rec.records["m-1"].Period)
}

func TestHandleAlertPropagatesStorageErrors(t *testing.T) {
	w := NewAlertWorker(&memRecorder{err: errors.New("disk full")}, testLogger())
	err := w.HandleAlert(context.Background(), &amqp.BudgetAlertMessage{MessageID: "m-1", BudgetID: "b"})
	assert.ErrorContains(t, err, "disk full")
}

func TestStartupCheck(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	s := store.New()
	over, err := s.AddBudget(core.Budget{CategoryID: "6", Amount: 100, Period: core.Monthly})
	require.NoError(t, err)
	_, err = s.AddBudget(core.Budget{CategoryID: "7", Amount: 1000, Period: core.Monthly})
	require.NoError(t, err)
	_, err = s.AddTransaction(core.Transaction{Type: core.Expense, Amount: 150, CategoryID: "6", Description: "groceries", Date: now})
	require.NoError(t, err)
	_, err = s.AddTransaction(core.Transaction{Type: core.Expense, Amount: 10, CategoryID: "7", Description: "bus", Date: now})
	require.NoError(t, err)

	rec := &memRecorder{}
	w := NewAlertWorker(rec, testLogger())

	n, err := w.StartupCheck(context.Background(), s, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.records, 1)
	for _, r := range rec.records {
		assert.Equal(t, over.ID, r.BudgetID)
		assert.Equal(t, "Food", r.CategoryName)
		assert.Equal(t, 150.0, r.Spent)
	}

	// A second pass finds the same alert and stores nothing new.
	n, err = w.StartupCheck(context.Background(), s, now)
	require.NoError(t, err)
	assert.Zero(t, n, "already recorded alerts are not counted")
	assert.Len(t, rec.records, 1)
}
