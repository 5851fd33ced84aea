package core

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:         "tx-1",
		Amount:     12.5,
		Type:       Expense,
		CategoryID: "6",
		Date:       time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		mut  func(*Transaction)
		want error
	}{
		{func(tx *Transaction) { tx.Amount = 0 }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Amount = -3 }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Amount = math.NaN() }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{func(tx *Transaction) { tx.CategoryID = " " }, ErrEmptyCategory},
	}
	for i, b := range bads {
		tx := good
		b.mut(&tx)
		if err := tx.Validate(); !errors.Is(err, b.want) {
			t.Fatalf("case %d expected %v, got %v", i, b.want, err)
		}
	}
}

func TestCategoryAndBudgetValidate(t *testing.T) {
	if err := (Category{Name: "Food", Type: Expense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "  ", Type: Expense}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Budget{CategoryID: "6", Amount: 100, Period: Monthly}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{CategoryID: "6", Amount: 100, Period: "daily"}).Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" food ", "", "food", "daily"})
	want := []string{"food", "daily"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeTags = %v, want %v", got, want)
	}
	if NormalizeTags([]string{" ", ""}) != nil {
		t.Fatalf("expected nil for blank tags")
	}
}

func TestWindowContainsInclusive(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	w := Window{Start: start, End: end}
	if !w.Contains(start) || !w.Contains(end) {
		t.Fatalf("window bounds must be inclusive")
	}
	if w.Contains(end.Add(time.Millisecond)) || w.Contains(start.Add(-time.Nanosecond)) {
		t.Fatalf("instants outside the window must not be contained")
	}
}
