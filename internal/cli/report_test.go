package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/period"
	"tally/internal/services"
)

func TestWriteReport(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	r := Report{
		Stats: services.Stats{
			Range:  period.Month,
			Window: core.Window{Start: start, End: end},
			Totals: core.Totals{Income: 3000, Expense: 450.5, Balance: 2549.5},
			Changes: map[core.Metric]*core.PeriodChange{
				core.MetricExpense: {Current: 450.5, Previous: 400, Percent: 12.6, Increased: true},
			},
		},
		Budgets: []BudgetLine{
			{Category: "Food", Status: core.BudgetStatus{
				Budget:   core.Budget{Amount: 300, Period: core.Monthly},
				Spent:    330,
				Progress: 110,
				Exceeded: true,
			}},
			{Status: core.BudgetStatus{Budget: core.Budget{Amount: 100, Period: core.Weekly}}},
		},
		Overview: core.BudgetOverview{TotalBudget: 400, TotalSpent: 330, Remaining: 70, Percent: 82.5},
		Trend:    []core.TrendPoint{{Label: "Mar 14", Expense: 20}, {Label: "Mar 15", Expense: 30}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Ledger summary: month")
	assert.Contains(t, out, "2025-03-01 00:00 to 2025-03-15 12:00")
	assert.Contains(t, out, "3000.00")
	assert.Contains(t, out, "up 12.6%")
	assert.Contains(t, out, "n/a", "metrics without a previous value")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "110.0%")
	assert.Contains(t, out, "Uncategorized")
	assert.Contains(t, out, "Total 330.00 of 400.00 (82.5%), 70.00 remaining")
	assert.Contains(t, out, "Mar 15")
}

func TestWriteReport_NoBudgets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, Report{Stats: services.Stats{Range: period.Today}}))

	assert.Contains(t, buf.String(), "No budgets configured.")
	assert.NotContains(t, buf.String(), "Trend")
}
