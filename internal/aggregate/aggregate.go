// Package aggregate computes totals and breakdowns over transaction lists.
//
// All functions are pure: they never modify the slices they receive and they
// never fail. Empty input yields zero values. Amounts that are NaN, infinite
// or negative contribute 0 to every sum (see core.SafeAmount).
package aggregate

import (
	"time"

	"tally/internal/core"
)

// FilterByDateRange keeps transactions dated within [start, end], inclusive.
func FilterByDateRange(list []core.Transaction, start, end time.Time) []core.Transaction {
	return FilterByWindow(list, core.Window{Start: start, End: end})
}

// FilterByWindow keeps transactions whose date falls inside w.
func FilterByWindow(list []core.Transaction, w core.Window) []core.Transaction {
	return filter(list, func(tx core.Transaction) bool { return w.Contains(tx.Date) })
}

// FilterByCategory keeps transactions referencing categoryID exactly.
func FilterByCategory(list []core.Transaction, categoryID string) []core.Transaction {
	return filter(list, func(tx core.Transaction) bool { return tx.CategoryID == categoryID })
}

// FilterByType keeps transactions of type t.
func FilterByType(list []core.Transaction, t core.TxType) []core.Transaction {
	return filter(list, func(tx core.Transaction) bool { return tx.Type == t })
}

func filter(list []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(list))
	for _, tx := range list {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func sumOf(list []core.Transaction, t core.TxType) float64 {
	var sum float64
	for _, tx := range list {
		if tx.Type == t {
			sum += core.SafeAmount(tx.Amount)
		}
	}
	return sum
}

// TotalIncome sums the amounts of income transactions.
func TotalIncome(list []core.Transaction) float64 {
	return sumOf(list, core.Income)
}

// TotalExpense sums the amounts of expense transactions.
func TotalExpense(list []core.Transaction) float64 {
	return sumOf(list, core.Expense)
}

// Balance is TotalIncome minus TotalExpense.
func Balance(list []core.Transaction) float64 {
	return TotalIncome(list) - TotalExpense(list)
}

// Summarize computes income, expense and balance in one call.
func Summarize(list []core.Transaction) core.Totals {
	income, expense := TotalIncome(list), TotalExpense(list)
	return core.Totals{Income: income, Expense: expense, Balance: income - expense}
}

// ByCategoryBreakdown sums transactions of type t per category, for every
// category of type t in categories. Categories whose sum is zero are left
// out, and transactions pointing at unknown categories are ignored; callers
// treat a missing key as zero.
func ByCategoryBreakdown(list []core.Transaction, categories []core.Category, t core.TxType) map[string]float64 {
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c.Type == t {
			known[c.ID] = struct{}{}
		}
	}
	out := make(map[string]float64)
	for _, tx := range list {
		if tx.Type != t {
			continue
		}
		if _, ok := known[tx.CategoryID]; !ok {
			continue
		}
		out[tx.CategoryID] += core.SafeAmount(tx.Amount)
	}
	for id, v := range out {
		if v == 0 {
			delete(out, id)
		}
	}
	return out
}

// CategoryAmounts is ByCategoryBreakdown in category order, with display
// names and colors attached.
func CategoryAmounts(list []core.Transaction, categories []core.Category, t core.TxType) []core.CategoryAmount {
	sums := ByCategoryBreakdown(list, categories, t)
	out := make([]core.CategoryAmount, 0, len(sums))
	for _, c := range categories {
		v, ok := sums[c.ID]
		if !ok || c.Type != t {
			continue
		}
		out = append(out, core.CategoryAmount{CategoryID: c.ID, Name: c.Name, Color: c.Color, Amount: v})
	}
	return out
}

// Change compares metric m between the current and previous transaction
// sets. It returns nil when the previous value is zero, since no percentage
// can be derived.
func Change(current, previous []core.Transaction, m core.Metric) *core.PeriodChange {
	cur := m.Pick(Summarize(current))
	prev := m.Pick(Summarize(previous))
	if prev == 0 {
		return nil
	}
	pct := (cur - prev) / prev * 100
	abs := pct
	if abs < 0 {
		abs = -abs
	}
	return &core.PeriodChange{
		Current:   cur,
		Previous:  prev,
		Percent:   core.Round1(abs),
		Increased: pct > 0,
		Favorable: favorable(m, pct),
	}
}

// favorable reports whether a change is good news: more income or balance,
// less expense.
func favorable(m core.Metric, pct float64) bool {
	switch m {
	case core.MetricExpense:
		return pct < 0
	default:
		return pct > 0
	}
}
