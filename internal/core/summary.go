package core

import "time"

// Window is an inclusive [Start, End] instant pair used to scope aggregation.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Totals is the income/expense/balance triple for a set of transactions.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// CategoryAmount is an amount aggregated for one category.
type CategoryAmount struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Amount     float64 `json:"amount"`
}

// TrendPoint is one bucket of an income/expense trend series.
type TrendPoint struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// BalancePoint is one bucket of a cumulative balance series.
type BalancePoint struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Balance float64 `json:"balance"`
}

// RadarPoint is one expense category on the radar chart.
type RadarPoint struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	FullMark   float64 `json:"fullMark"`
}

// Metric selects which total a statistic reports.
type Metric string

const (
	MetricBalance Metric = "balance"
	MetricIncome  Metric = "income"
	MetricExpense Metric = "expense"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricBalance, MetricIncome, MetricExpense:
		return true
	default:
		return false
	}
}

// Pick returns the total the metric refers to.
func (m Metric) Pick(t Totals) float64 {
	switch m {
	case MetricIncome:
		return t.Income
	case MetricExpense:
		return t.Expense
	default:
		return t.Balance
	}
}

// PeriodChange compares a metric against the preceding window.
type PeriodChange struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	Percent   float64 `json:"percent"` // absolute change, one decimal
	Increased bool    `json:"increased"`
	Favorable bool    `json:"favorable"`
}

// BudgetStatus is a budget evaluated against its current period.
type BudgetStatus struct {
	Budget    Budget  `json:"budget"`
	Window    Window  `json:"window"`
	Spent     float64 `json:"spent"`
	Progress  float64 `json:"progress"`
	Remaining float64 `json:"remaining"`
	Exceeded  bool    `json:"exceeded"`
}

// BudgetOverview summarizes all budgets together.
type BudgetOverview struct {
	TotalBudget float64 `json:"totalBudget"`
	TotalSpent  float64 `json:"totalSpent"`
	Remaining   float64 `json:"remaining"`
	Percent     float64 `json:"percent"`
	Count       int     `json:"count"`
}
