package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/store"
)

// Wednesday.
var now = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

func expense(amount float64, cat string, date time.Time) core.Transaction {
	return core.Transaction{Amount: amount, Type: core.Expense, CategoryID: cat, Date: date}
}

func TestProgressIsCappedWhenOverspent(t *testing.T) {
	b := core.Budget{ID: "b", CategoryID: "food", Amount: 200, Period: core.Monthly}
	txs := []core.Transaction{expense(250, "food", now.AddDate(0, 0, -3))}

	assert.Equal(t, 250.0, Spent(b, txs, now))
	assert.Equal(t, 100.0, Progress(b, txs, now))

	st := Status(b, txs, now)
	assert.True(t, st.Exceeded)
	assert.Equal(t, -50.0, st.Remaining)
	assert.Equal(t, 250.0, st.Budget.Spent)
}

func TestBudgetWithoutMatchingExpenses(t *testing.T) {
	b := core.Budget{ID: "b", CategoryID: "travel", Amount: 500, Period: core.Monthly}
	txs := []core.Transaction{expense(80, "food", now)}

	assert.Zero(t, Spent(b, txs, now))
	assert.Zero(t, Progress(b, txs, now))
}

func TestZeroAmountHasNoProgress(t *testing.T) {
	b := core.Budget{ID: "b", CategoryID: "food", Amount: 0, Period: core.Monthly}
	txs := []core.Transaction{expense(80, "food", now)}
	assert.Equal(t, 80.0, Spent(b, txs, now))
	assert.Zero(t, Progress(b, txs, now))
}

func TestProgressBounds(t *testing.T) {
	b := core.Budget{ID: "b", CategoryID: "food", Amount: 100, Period: core.Weekly}
	for _, amount := range []float64{0.01, 1, 50, 99.99, 100, 101, 1e9} {
		p := Progress(b, []core.Transaction{expense(amount, "food", now)}, now)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestSpentRequiresCategoryTypeAndWindow(t *testing.T) {
	b := core.Budget{ID: "b", CategoryID: "food", Amount: 100, Period: core.Weekly}
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		expense(10, "food", now),
		expense(20, "food", monday),
		expense(40, "food", monday.Add(-time.Hour)),
		expense(80, "fuel", now),
		{Amount: 160, Type: core.Income, CategoryID: "food", Date: now},
	}
	assert.Equal(t, 30.0, Spent(b, txs, now))
}

func TestSpentIgnoresStartDate(t *testing.T) {
	b := core.Budget{ID: "b", CategoryID: "food", Amount: 100, Period: core.Monthly,
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	txs := []core.Transaction{
		expense(10, "food", now),
		expense(99, "food", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)),
	}
	assert.Equal(t, 10.0, Spent(b, txs, now))
}

func TestEvaluatorUnknownBudget(t *testing.T) {
	e := NewEvaluator(store.New())
	assert.Zero(t, e.Spent("missing", now))
	assert.Zero(t, e.Progress("missing", now))
}

func TestEvaluatorAgainstStore(t *testing.T) {
	s := store.New()
	b, err := s.AddBudget(core.Budget{CategoryID: "6", Amount: 200, Period: core.Monthly})
	require.NoError(t, err)
	dup, err := s.AddBudget(core.Budget{CategoryID: "6", Amount: 50, Period: core.Monthly})
	require.NoError(t, err)
	_, err = s.AddTransaction(expense(100, "6", now))
	require.NoError(t, err)

	e := NewEvaluator(s)
	assert.Equal(t, 100.0, e.Spent(b.ID, now))
	assert.Equal(t, 50.0, e.Progress(b.ID, now))
	assert.Equal(t, 100.0, e.Progress(dup.ID, now))

	ov := e.Overview(now)
	assert.Equal(t, 250.0, ov.TotalBudget)
	assert.Equal(t, 200.0, ov.TotalSpent, "duplicates are evaluated independently and summed")
	assert.Equal(t, 50.0, ov.Remaining)
	assert.Equal(t, 80.0, ov.Percent)
	assert.Equal(t, 2, ov.Count)

	stored, _ := s.Budget(b.ID)
	assert.Zero(t, stored.Spent, "evaluation never writes back")
}

func TestOverviewPercentIsNotCapped(t *testing.T) {
	ov := OverviewOf([]core.BudgetStatus{
		{Budget: core.Budget{ID: "a", Amount: 100}, Spent: 300},
	})
	assert.Equal(t, 300.0, ov.Percent)
	assert.Zero(t, OverviewOf(nil).Percent)
}

func TestCrossed(t *testing.T) {
	before := []core.BudgetStatus{
		{Budget: core.Budget{ID: "a"}, Progress: 90},
		{Budget: core.Budget{ID: "b"}, Progress: 100},
	}
	after := []core.BudgetStatus{
		{Budget: core.Budget{ID: "a"}, Progress: 100},
		{Budget: core.Budget{ID: "b"}, Progress: 100},
		{Budget: core.Budget{ID: "c"}, Progress: 100},
		{Budget: core.Budget{ID: "d"}, Progress: 40},
	}
	got := Crossed(before, after)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Budget.ID)
	assert.Equal(t, "c", got[1].Budget.ID)
	assert.Empty(t, Crossed(after, after))
}
