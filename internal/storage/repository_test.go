package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)
	_, ok, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	date := time.Date(2025, time.March, 3, 12, 30, 15, int(250*time.Millisecond), time.UTC)
	snap := store.Snapshot{
		Categories: store.DefaultCategories(),
		Transactions: []core.Transaction{
			{ID: "tx-1", Amount: 12.34, Type: core.Expense, CategoryID: "6", Date: date, Description: "lunch", Tags: []string{"work", "team"}},
			{ID: "tx-2", Amount: 1000, Type: core.Income, CategoryID: "deleted", Date: date.Add(time.Hour)},
		},
		Budgets: []core.Budget{
			{ID: "budget-6", CategoryID: "6", Amount: 300, Spent: 12.34, Period: core.Monthly, StartDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "budget-7", CategoryID: "7", Amount: 50, Period: core.Weekly},
		},
	}
	require.NoError(t, repo.Save(ctx, snap))

	got, ok, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.Categories, got.Categories)
	assert.Equal(t, snap.Transactions, got.Transactions)
	assert.Equal(t, snap.Budgets, got.Budgets)
}

func TestSaveReplacesPreviousState(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	first := store.Snapshot{
		Categories:   store.DefaultCategories(),
		Transactions: []core.Transaction{{ID: "tx-1", Amount: 1, Type: core.Expense, CategoryID: "6", Date: date, Tags: []string{"a"}}},
	}
	require.NoError(t, repo.Save(ctx, first))

	second := store.Snapshot{Categories: store.DefaultCategories()[:2]}
	require.NoError(t, repo.Save(ctx, second))

	got, ok, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.Transactions)
	assert.Len(t, got.Categories, 2)
}

func TestSaveKeepsOffsets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	loc := time.FixedZone("CST", 8*3600)
	date := time.Date(2025, time.January, 1, 0, 30, 0, 0, loc)

	require.NoError(t, repo.Save(ctx, store.Snapshot{
		Categories:   store.DefaultCategories(),
		Transactions: []core.Transaction{{ID: "tx-1", Amount: 1, Type: core.Expense, CategoryID: "6", Date: date}},
	}))
	got, _, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)
	assert.True(t, date.Equal(got.Transactions[0].Date))
	assert.Equal(t, 1, got.Transactions[0].Date.Day(), "day is kept in the original offset")
}

func TestRecordAlertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	w := core.Window{
		Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.March, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}
	a := AlertRecord{MessageID: "m-1", BudgetID: "budget-6", CategoryID: "6", CategoryName: "Food", Amount: 200, Spent: 250, Period: core.Monthly, Window: w}

	created, err := repo.RecordAlert(ctx, a)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.RecordAlert(ctx, a)
	require.NoError(t, err)
	assert.False(t, created)

	a.MessageID = "m-2"
	a.Spent = 300
	_, err = repo.RecordAlert(ctx, a)
	require.NoError(t, err)

	alerts, err := repo.ListAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "m-2", alerts[0].MessageID)
	assert.Equal(t, w, alerts[1].Window)
	assert.Equal(t, core.Monthly, alerts[1].Period)
}
