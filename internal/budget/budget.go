// Package budget evaluates budgets against the expenses of their current
// period.
package budget

import (
	"math"
	"time"

	"tally/internal/aggregate"
	"tally/internal/core"
	"tally/internal/period"
	"tally/internal/store"
)

// Spent sums the expenses of b's category inside b's current period window.
// The window is resolved relative to now, not to b.StartDate.
func Spent(b core.Budget, txs []core.Transaction, now time.Time) float64 {
	w := period.ForBudget(b.Period, now)
	matching := aggregate.FilterByCategory(aggregate.FilterByWindow(txs, w), b.CategoryID)
	return aggregate.TotalExpense(matching)
}

// Progress is the share of b.Amount already spent, as a percentage in
// [0, 100]. A budget without a positive amount reports 0.
func Progress(b core.Budget, txs []core.Transaction, now time.Time) float64 {
	return progressOf(b.Amount, Spent(b, txs, now))
}

func progressOf(amount, spent float64) float64 {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return math.Min(spent/amount*100, 100)
}

// Evaluator computes budget figures from a store view. It never writes to
// the store.
type Evaluator struct {
	r store.Reader
}

func NewEvaluator(r store.Reader) *Evaluator {
	return &Evaluator{r: r}
}

// Spent returns the spent amount for the budget with the given id, or 0 when
// no such budget exists.
func (e *Evaluator) Spent(id string, now time.Time) float64 {
	b, ok := e.r.Budget(id)
	if !ok {
		return 0
	}
	return Spent(b, e.r.Transactions(), now)
}

// Progress returns the capped progress for the budget with the given id, or
// 0 when no such budget exists.
func (e *Evaluator) Progress(id string, now time.Time) float64 {
	b, ok := e.r.Budget(id)
	if !ok {
		return 0
	}
	return Progress(b, e.r.Transactions(), now)
}

// Status evaluates b against txs.
func Status(b core.Budget, txs []core.Transaction, now time.Time) core.BudgetStatus {
	spent := Spent(b, txs, now)
	return core.BudgetStatus{
		Budget:    withSpent(b, spent),
		Window:    period.ForBudget(b.Period, now),
		Spent:     spent,
		Progress:  progressOf(b.Amount, spent),
		Remaining: b.Amount - spent,
		Exceeded:  b.Amount > 0 && spent > b.Amount,
	}
}

func withSpent(b core.Budget, spent float64) core.Budget {
	b.Spent = spent
	return b
}

// Statuses evaluates every budget in the store, in store order.
func (e *Evaluator) Statuses(now time.Time) []core.BudgetStatus {
	return StatusesOf(e.r.Budgets(), e.r.Transactions(), now)
}

// StatusesOf evaluates each budget independently; budgets sharing a
// category each see the full set of matching expenses.
func StatusesOf(budgets []core.Budget, txs []core.Transaction, now time.Time) []core.BudgetStatus {
	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, Status(b, txs, now))
	}
	return out
}

// Overview sums amounts and spending over all budgets. Percent is the
// overall ratio and, unlike per-budget progress, is not capped.
func (e *Evaluator) Overview(now time.Time) core.BudgetOverview {
	return OverviewOf(e.Statuses(now))
}

func OverviewOf(statuses []core.BudgetStatus) core.BudgetOverview {
	var o core.BudgetOverview
	for _, s := range statuses {
		o.TotalBudget += core.SafeAmount(s.Budget.Amount)
		o.TotalSpent += s.Spent
	}
	o.Count = len(statuses)
	o.Remaining = o.TotalBudget - o.TotalSpent
	if o.TotalBudget > 0 {
		o.Percent = o.TotalSpent / o.TotalBudget * 100
	}
	return o
}

// AtCeiling reports whether spending has reached the budget amount.
func AtCeiling(s core.BudgetStatus) bool { return s.Progress >= 100 }

// Crossed returns the statuses in after whose progress has reached 100
// while it had not in before. Budgets missing from before count as under
// their ceiling.
func Crossed(before, after []core.BudgetStatus) []core.BudgetStatus {
	was := make(map[string]bool, len(before))
	for _, s := range before {
		was[s.Budget.ID] = AtCeiling(s)
	}
	var out []core.BudgetStatus
	for _, s := range after {
		if AtCeiling(s) && !was[s.Budget.ID] {
			out = append(out, s)
		}
	}
	return out
}
