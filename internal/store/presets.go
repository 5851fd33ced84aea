package store

import (
	"math/rand/v2"
	"time"

	"tally/internal/core"
)

var systemCategories = []core.Category{
	{ID: "1", Name: "Salary", Icon: "fa-money-bill-wave", Type: core.Income, Color: "#10B981"},
	{ID: "2", Name: "Investments", Icon: "fa-chart-line", Type: core.Income, Color: "#3B82F6"},
	{ID: "3", Name: "Side job", Icon: "fa-briefcase", Type: core.Income, Color: "#8B5CF6"},
	{ID: "4", Name: "Gifts", Icon: "fa-gift", Type: core.Income, Color: "#EC4899"},
	{ID: "5", Name: "Other income", Icon: "fa-plus-circle", Type: core.Income, Color: "#F59E0B"},

	{ID: "6", Name: "Food", Icon: "fa-utensils", Type: core.Expense, Color: "#EF4444"},
	{ID: "7", Name: "Transport", Icon: "fa-car", Type: core.Expense, Color: "#F59E0B"},
	{ID: "8", Name: "Shopping", Icon: "fa-shopping-cart", Type: core.Expense, Color: "#8B5CF6"},
	{ID: "9", Name: "Entertainment", Icon: "fa-film", Type: core.Expense, Color: "#EC4899"},
	{ID: "10", Name: "Housing", Icon: "fa-home", Type: core.Expense, Color: "#3B82F6"},
	{ID: "11", Name: "Health", Icon: "fa-heartbeat", Type: core.Expense, Color: "#10B981"},
	{ID: "12", Name: "Education", Icon: "fa-graduation-cap", Type: core.Expense, Color: "#6366F1"},
	{ID: "13", Name: "Other expenses", Icon: "fa-minus-circle", Type: core.Expense, Color: "#6B7280"},
}

var systemIDs = func() map[string]struct{} {
	m := make(map[string]struct{}, len(systemCategories))
	for _, c := range systemCategories {
		m[c.ID] = struct{}{}
	}
	return m
}()

// DefaultCategories returns a fresh copy of the system categories.
func DefaultCategories() []core.Category {
	return append([]core.Category(nil), systemCategories...)
}

// IsSystemCategory reports whether id names a category that cannot be deleted.
func IsSystemCategory(id string) bool {
	_, ok := systemIDs[id]
	return ok
}

// housingID gets a fixed demo budget; the other demo budgets are random.
const housingID = "10"

var demoBudgetCategories = []string{"6", "7", "8", housingID}

// DemoSnapshot builds sample data: 30 days of 1 to 3 transactions a day
// ending on now's day (80% expenses), and monthly budgets for food,
// transport, shopping and housing. Pass a seeded rng for reproducible data.
func DemoSnapshot(now time.Time, rng *rand.Rand) Snapshot {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
	}
	cats := DefaultCategories()
	var income, expense []core.Category
	for _, c := range cats {
		if c.Type == core.Income {
			income = append(income, c)
		} else {
			expense = append(expense, c)
		}
	}

	var txs []core.Transaction
	for i := 29; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		n := rng.IntN(3) + 1
		for j := 0; j < n; j++ {
			isExpense := rng.Float64() > 0.2
			tx := core.Transaction{ID: newID("tx"), Date: normalizeDate(date)}
			if isExpense {
				c := expense[rng.IntN(len(expense))]
				tx.Type, tx.CategoryID = core.Expense, c.ID
				tx.Amount = float64(rng.IntN(200) + 10)
				tx.Description = c.Name
				tx.Tags = []string{"daily"}
			} else {
				c := income[rng.IntN(len(income))]
				tx.Type, tx.CategoryID = core.Income, c.ID
				tx.Amount = float64(rng.IntN(1000) + 100)
				tx.Description = c.Name
			}
			txs = append(txs, tx)
		}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	budgets := make([]core.Budget, 0, len(demoBudgetCategories))
	for _, id := range demoBudgetCategories {
		amount := float64(rng.IntN(1000) + 500)
		if id == housingID {
			amount = 3000
		}
		budgets = append(budgets, core.Budget{
			ID:         "budget-" + id,
			CategoryID: id,
			Amount:     amount,
			Period:     core.Monthly,
			StartDate:  start,
		})
	}
	return Snapshot{Transactions: txs, Categories: cats, Budgets: budgets}
}
