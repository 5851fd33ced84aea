package store

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

var jan5 = time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestNewSeedsSystemCategories(t *testing.T) {
	s := New()
	cats := s.Categories()
	require.Len(t, cats, 13)

	var income, expense int
	for _, c := range cats {
		assert.True(t, IsSystemCategory(c.ID))
		switch c.Type {
		case core.Income:
			income++
		case core.Expense:
			expense++
		}
	}
	assert.Equal(t, 5, income)
	assert.Equal(t, 8, expense)
	assert.Empty(t, s.Transactions())
	assert.Empty(t, s.Budgets())
}

func TestAddTransaction(t *testing.T) {
	s := New()
	tx, err := s.AddTransaction(core.Transaction{
		Amount:      12.5,
		Type:        core.Expense,
		CategoryID:  "6",
		Date:        jan5.Add(123456 * time.Nanosecond),
		Description: "  lunch ",
		Tags:        []string{"work", " work", ""},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tx.ID, "tx-"))
	assert.Equal(t, "lunch", tx.Description)
	assert.Equal(t, []string{"work"}, tx.Tags)
	assert.Equal(t, jan5, tx.Date, "dates keep millisecond precision")

	got, ok := s.Transaction(tx.ID)
	require.True(t, ok)
	assert.Equal(t, tx, got)
	assert.Equal(t, uint64(1), s.Version())
}

func TestAddTransactionRejectsInvalid(t *testing.T) {
	s := New()
	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"zero amount", core.Transaction{Type: core.Expense, CategoryID: "6", Date: jan5}, core.ErrInvalidAmount},
		{"negative amount", core.Transaction{Amount: -3, Type: core.Expense, CategoryID: "6", Date: jan5}, core.ErrInvalidAmount},
		{"bad type", core.Transaction{Amount: 3, Type: "transfer", CategoryID: "6", Date: jan5}, core.ErrInvalidType},
		{"no date", core.Transaction{Amount: 3, Type: core.Expense, CategoryID: "6"}, core.ErrZeroDate},
		{"no category", core.Transaction{Amount: 3, Type: core.Expense, Date: jan5}, core.ErrEmptyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTransaction(tt.tx)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, s.Transactions())
	assert.Zero(t, s.Version())
}

func TestUpdateTransaction(t *testing.T) {
	s := New()
	tx, err := s.AddTransaction(core.Transaction{Amount: 10, Type: core.Expense, CategoryID: "6", Date: jan5})
	require.NoError(t, err)

	updated, err := s.UpdateTransaction(tx.ID, TransactionPatch{
		Amount: ptr(20.0),
		Tags:   ptr([]string{"a", "a", "b"}),
	})
	require.NoError(t, err)
	assert.Equal(t, tx.ID, updated.ID)
	assert.Equal(t, 20.0, updated.Amount)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
	assert.Equal(t, jan5, updated.Date)

	_, err = s.UpdateTransaction(tx.ID, TransactionPatch{Amount: ptr(0.0)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	got, _ := s.Transaction(tx.ID)
	assert.Equal(t, 20.0, got.Amount, "failed update leaves the record untouched")

	_, err = s.UpdateTransaction("missing", TransactionPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	s := New()
	tx, err := s.AddTransaction(core.Transaction{Amount: 10, Type: core.Income, CategoryID: "1", Date: jan5})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(tx.ID))
	assert.ErrorIs(t, s.DeleteTransaction(tx.ID), ErrNotFound)
	assert.Empty(t, s.Transactions())
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	_, err := s.AddTransaction(core.Transaction{Amount: 10, Type: core.Expense, CategoryID: "6", Date: jan5, Tags: []string{"x"}})
	require.NoError(t, err)

	list := s.Transactions()
	list[0].Amount = 999
	list[0].Tags[0] = "mutated"
	cats := s.Categories()
	cats[0].Name = "mutated"

	again := s.Transactions()
	assert.Equal(t, 10.0, again[0].Amount)
	assert.Equal(t, []string{"x"}, again[0].Tags)
	assert.NotEqual(t, "mutated", s.Categories()[0].Name)
}

func TestCategories(t *testing.T) {
	s := New()

	c, err := s.AddCategory(core.Category{Name: "Pets", Type: core.Expense, Icon: "fa-paw", Color: "#000"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "cat-"))

	_, err = s.AddCategory(core.Category{Name: "pets", Type: core.Expense})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	_, err = s.AddCategory(core.Category{Name: "Pets", Type: core.Income})
	assert.NoError(t, err, "same name is allowed for the other type")

	_, err = s.UpdateCategory(c.ID, CategoryPatch{Name: ptr("FOOD")})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	renamed, err := s.UpdateCategory(c.ID, CategoryPatch{Name: ptr("Animals"), Color: ptr("#fff")})
	require.NoError(t, err)
	assert.Equal(t, "Animals", renamed.Name)
	assert.Equal(t, "#fff", renamed.Color)
	assert.Equal(t, core.Expense, renamed.Type)
}

func TestDeleteCategory(t *testing.T) {
	s := New()
	c, err := s.AddCategory(core.Category{Name: "Pets", Type: core.Expense})
	require.NoError(t, err)
	tx, err := s.AddTransaction(core.Transaction{Amount: 5, Type: core.Expense, CategoryID: c.ID, Date: jan5})
	require.NoError(t, err)

	assert.False(t, s.DeleteCategory("6"), "system categories stay")
	assert.False(t, s.DeleteCategory("nope"))
	assert.True(t, s.DeleteCategory(c.ID))
	assert.False(t, s.DeleteCategory(c.ID))

	_, ok := s.Category(c.ID)
	assert.False(t, ok)
	got, ok := s.Transaction(tx.ID)
	require.True(t, ok, "transactions survive their category")
	assert.Equal(t, c.ID, got.CategoryID)
}

func TestResetCategories(t *testing.T) {
	s := New()
	_, err := s.AddCategory(core.Category{Name: "Pets", Type: core.Expense})
	require.NoError(t, err)
	_, err = s.UpdateCategory("6", CategoryPatch{Name: ptr("Groceries")})
	require.NoError(t, err)

	s.ResetCategories()
	assert.Equal(t, DefaultCategories(), s.Categories())
}

func TestBudgets(t *testing.T) {
	s := New()

	b, err := s.AddBudget(core.Budget{CategoryID: "6", Amount: 200, Period: core.Monthly, Spent: 50})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.ID, "budget-"))
	assert.Zero(t, b.Spent, "spent is never taken from the caller")

	_, err = s.AddBudget(core.Budget{CategoryID: "1", Amount: 200, Period: core.Monthly})
	assert.ErrorIs(t, err, ErrUnknownCategory, "income categories cannot carry a budget")

	_, err = s.AddBudget(core.Budget{CategoryID: "6", Amount: 200, Period: "daily"})
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)

	dup, err := s.AddBudget(core.Budget{CategoryID: "6", Amount: 100, Period: core.Weekly})
	require.NoError(t, err, "a second budget on the same category is tolerated")

	updated, err := s.UpdateBudget(b.ID, BudgetPatch{Amount: ptr(300.0), Period: ptr(core.Yearly)})
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.Amount)
	assert.Equal(t, core.Yearly, updated.Period)

	v := s.Version()
	s.SetSpent(b.ID, 42)
	got, _ := s.Budget(b.ID)
	assert.Equal(t, 42.0, got.Spent)
	assert.Equal(t, v, s.Version())

	require.NoError(t, s.DeleteBudget(dup.ID))
	assert.ErrorIs(t, s.DeleteBudget(dup.ID), ErrNotFound)
	assert.Len(t, s.Budgets(), 1)
}

func TestReplaceAndClear(t *testing.T) {
	s := New()
	_, err := s.AddTransaction(core.Transaction{Amount: 1, Type: core.Expense, CategoryID: "6", Date: jan5})
	require.NoError(t, err)

	bad := Snapshot{Transactions: []core.Transaction{{Amount: -1, Type: core.Expense, CategoryID: "6", Date: jan5}}}
	assert.ErrorIs(t, s.Replace(bad), core.ErrInvalidAmount)
	assert.Len(t, s.Transactions(), 1, "failed import keeps existing data")

	snap := Snapshot{
		Transactions: []core.Transaction{
			{ID: "tx-a", Amount: 3, Type: core.Income, CategoryID: "1", Date: jan5},
			{Amount: 4, Type: core.Expense, CategoryID: "gone", Date: jan5},
		},
		Budgets: []core.Budget{{ID: "budget-x", CategoryID: "6", Amount: 10, Period: core.Monthly}},
	}
	require.NoError(t, s.Replace(snap))
	txs := s.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-a", txs[0].ID)
	assert.NotEmpty(t, txs[1].ID)
	assert.Len(t, s.Categories(), 13, "missing categories fall back to the system set")

	s.Clear()
	assert.Empty(t, s.Transactions())
	assert.Empty(t, s.Budgets())
	assert.Len(t, s.Categories(), 13)
}

func TestReplaceRejectsDuplicateIDs(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"transactions", Snapshot{Transactions: []core.Transaction{
			{ID: "x", Amount: 1, Type: core.Expense, CategoryID: "6", Date: jan5},
			{ID: "x", Amount: 2, Type: core.Expense, CategoryID: "6", Date: jan5},
		}}},
		{"categories", Snapshot{Categories: []core.Category{
			{ID: "c", Name: "Rent", Type: core.Expense},
			{ID: "c", Name: "Salary", Type: core.Income},
		}}},
		{"budgets", Snapshot{Budgets: []core.Budget{
			{ID: "b", CategoryID: "6", Amount: 10, Period: core.Monthly},
			{ID: "b", CategoryID: "7", Amount: 20, Period: core.Weekly},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			kept, err := s.AddTransaction(core.Transaction{Amount: 1, Type: core.Expense, CategoryID: "6", Date: jan5})
			require.NoError(t, err)
			version := s.Version()

			assert.ErrorIs(t, s.Replace(tt.snap), ErrDuplicateID)
			txs := s.Transactions()
			require.Len(t, txs, 1)
			assert.Equal(t, kept.ID, txs[0].ID)
			assert.Len(t, s.Categories(), 13)
			assert.Empty(t, s.Budgets())
			assert.Equal(t, version, s.Version())
		})
	}
}

func TestAddTransactionRegeneratesTakenID(t *testing.T) {
	s := New()
	first, err := s.AddTransaction(core.Transaction{ID: "x", Amount: 1, Type: core.Expense, CategoryID: "6", Date: jan5})
	require.NoError(t, err)
	assert.Equal(t, "x", first.ID)

	second, err := s.AddTransaction(core.Transaction{ID: "x", Amount: 2, Type: core.Expense, CategoryID: "6", Date: jan5})
	require.NoError(t, err)
	assert.NotEqual(t, "x", second.ID)

	require.NoError(t, s.DeleteTransaction("x"))
	_, ok := s.Transaction("x")
	assert.False(t, ok)
	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, second.ID, txs[0].ID)
}

func TestNewFromSnapshot(t *testing.T) {
	s, err := NewFromSnapshot(Snapshot{Transactions: []core.Transaction{{Amount: 3, Type: core.Income, CategoryID: "1", Date: jan5}}})
	require.NoError(t, err)
	assert.Len(t, s.Transactions(), 1)
	assert.Zero(t, s.Version())
}

func TestDemoSnapshot(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	snap := DemoSnapshot(now, rand.New(rand.NewPCG(1, 2)))

	assert.GreaterOrEqual(t, len(snap.Transactions), 30)
	assert.LessOrEqual(t, len(snap.Transactions), 90)
	for _, tx := range snap.Transactions {
		require.NoError(t, tx.Validate())
		assert.False(t, tx.Date.After(now))
		assert.False(t, tx.Date.Before(now.AddDate(0, 0, -29)))
	}
	require.Len(t, snap.Budgets, 4)
	for _, b := range snap.Budgets {
		require.NoError(t, b.Validate())
		if b.CategoryID == housingID {
			assert.Equal(t, 3000.0, b.Amount)
		}
	}

	s, err := NewFromSnapshot(snap)
	require.NoError(t, err)
	assert.Len(t, s.Transactions(), len(snap.Transactions))
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = s.AddTransaction(core.Transaction{Amount: 1, Type: core.Expense, CategoryID: "6", Date: jan5})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.Transactions(), 400)
	assert.Equal(t, uint64(400), s.Version())
}
