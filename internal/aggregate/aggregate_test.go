package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/period"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 12, 0, 0, 0, time.UTC)
}

func tx(id string, amount float64, t core.TxType, cat string, date time.Time) core.Transaction {
	return core.Transaction{ID: id, Amount: amount, Type: t, CategoryID: cat, Date: date}
}

var categories = []core.Category{
	{ID: "1", Name: "Salary", Type: core.Income, Color: "#10B981"},
	{ID: "6", Name: "Food", Type: core.Expense, Color: "#EF4444"},
	{ID: "7", Name: "Transport", Type: core.Expense, Color: "#F59E0B"},
	{ID: "8", Name: "Shopping", Type: core.Expense, Color: "#8B5CF6"},
}

func TestTotalsWithinMonthWindow(t *testing.T) {
	list := []core.Transaction{
		tx("a", 100, core.Income, "1", day(time.January, 5)),
		tx("b", 40, core.Expense, "6", day(time.January, 6)),
	}
	w := period.MonthOf(2025, time.January, time.UTC)
	in := FilterByWindow(list, w)

	assert.Equal(t, 100.0, TotalIncome(in))
	assert.Equal(t, 40.0, TotalExpense(in))
	assert.Equal(t, 60.0, Balance(in))
}

func TestTodayBalanceSameDay(t *testing.T) {
	now := time.Date(2025, time.April, 2, 18, 0, 0, 0, time.UTC)
	list := []core.Transaction{
		tx("in", 50, core.Income, "1", now.Add(-2*time.Hour)),
		tx("out", 20, core.Expense, "6", now.Add(-time.Hour)),
		tx("yesterday", 500, core.Income, "1", now.AddDate(0, 0, -1)),
	}
	w := period.Resolve(period.Today, now)
	assert.Equal(t, 30.0, Balance(FilterByWindow(list, w)))
}

func TestEmptyInputs(t *testing.T) {
	assert.Zero(t, TotalIncome(nil))
	assert.Zero(t, TotalExpense(nil))
	assert.Zero(t, Balance([]core.Transaction{}))
	assert.Empty(t, ByCategoryBreakdown(nil, categories, core.Expense))
	assert.Empty(t, FilterByCategory(nil, "6"))
	assert.Equal(t, core.Totals{}, Summarize(nil))
}

func TestBalanceIdentity(t *testing.T) {
	lists := [][]core.Transaction{
		nil,
		{tx("a", 1.1, core.Income, "1", day(1, 1))},
		{tx("a", 3.3, core.Expense, "6", day(1, 1)), tx("b", 0.7, core.Income, "1", day(1, 2))},
		{tx("a", 250, core.Expense, "x", day(2, 1)), tx("b", 250, core.Expense, "6", day(2, 1))},
	}
	for _, list := range lists {
		assert.Equal(t, TotalIncome(list)-TotalExpense(list), Balance(list))
	}
}

func TestFilterByDateRangeInclusiveAndIdempotent(t *testing.T) {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	list := []core.Transaction{
		tx("start", 1, core.Expense, "6", start),
		tx("end", 1, core.Expense, "6", end),
		tx("before", 1, core.Expense, "6", start.Add(-time.Millisecond)),
		tx("after", 1, core.Expense, "6", end.Add(time.Millisecond)),
	}
	once := FilterByDateRange(list, start, end)
	require.Len(t, once, 2)
	assert.Equal(t, "start", once[0].ID)
	assert.Equal(t, "end", once[1].ID)
	assert.Equal(t, once, FilterByDateRange(once, start, end))
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	list := []core.Transaction{
		tx("a", 1, core.Expense, "6", day(1, 1)),
		tx("b", 2, core.Income, "1", day(1, 2)),
	}
	snapshot := append([]core.Transaction(nil), list...)
	_ = FilterByType(list, core.Income)
	_ = FilterByCategory(list, "1")
	_ = Select(list, Query{SortBy: SortByAmount}, nil)
	assert.Equal(t, snapshot, list)
}

func TestDeletedCategoryStillCountsInTotals(t *testing.T) {
	list := []core.Transaction{
		tx("a", 30, core.Expense, "6", day(5, 1)),
		tx("b", 70, core.Expense, "deleted", day(5, 2)),
		tx("c", 200, core.Income, "gone", day(5, 3)),
	}
	assert.Equal(t, 100.0, TotalExpense(list))
	assert.Equal(t, 200.0, TotalIncome(list))

	breakdown := ByCategoryBreakdown(list, categories, core.Expense)
	assert.Equal(t, map[string]float64{"6": 30}, breakdown)
	_, ok := breakdown["deleted"]
	assert.False(t, ok)
	assert.Empty(t, ByCategoryBreakdown(list, categories, core.Income))
}

func TestByCategoryBreakdownIgnoresTypeMismatch(t *testing.T) {
	// An income booked against an expense category never shows up in the
	// expense breakdown.
	list := []core.Transaction{
		tx("a", 10, core.Income, "6", day(1, 1)),
		tx("b", 5, core.Expense, "6", day(1, 1)),
		tx("c", 8, core.Expense, "7", day(1, 1)),
	}
	assert.Equal(t, map[string]float64{"6": 5, "7": 8}, ByCategoryBreakdown(list, categories, core.Expense))
}

func TestCategoryAmountsOrdered(t *testing.T) {
	list := []core.Transaction{
		tx("a", 8, core.Expense, "8", day(1, 1)),
		tx("b", 5, core.Expense, "6", day(1, 1)),
	}
	got := CategoryAmounts(list, categories, core.Expense)
	require.Len(t, got, 2)
	assert.Equal(t, "Food", got[0].Name)
	assert.Equal(t, "#EF4444", got[0].Color)
	assert.Equal(t, "Shopping", got[1].Name)
}

func TestMalformedAmountsContributeZero(t *testing.T) {
	list := []core.Transaction{
		tx("a", math.NaN(), core.Expense, "6", day(1, 1)),
		tx("b", -50, core.Expense, "6", day(1, 1)),
		tx("c", math.Inf(1), core.Income, "1", day(1, 1)),
		tx("d", 12, core.Expense, "6", day(1, 1)),
	}
	assert.Equal(t, 12.0, TotalExpense(list))
	assert.Zero(t, TotalIncome(list))
	assert.Equal(t, map[string]float64{"6": 12}, ByCategoryBreakdown(list, categories, core.Expense))
}

func TestChange(t *testing.T) {
	cur := []core.Transaction{tx("a", 150, core.Expense, "6", day(2, 1))}
	prev := []core.Transaction{tx("b", 100, core.Expense, "6", day(1, 1))}

	ch := Change(cur, prev, core.MetricExpense)
	require.NotNil(t, ch)
	assert.Equal(t, 50.0, ch.Percent)
	assert.True(t, ch.Increased)
	assert.False(t, ch.Favorable, "spending more is not favorable")

	ch = Change(prev, cur, core.MetricExpense)
	require.NotNil(t, ch)
	assert.Equal(t, 33.3, ch.Percent)
	assert.True(t, ch.Favorable)

	assert.Nil(t, Change(cur, nil, core.MetricExpense))
}
