// Package store owns the ledger's transactions, categories and budgets.
//
// Every other component receives copies through Reader and derives values
// from them; only Store mutates the collections.
package store

import (
	"context"
	"errors"
	"time"

	"tally/internal/core"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("category name already exists for this type")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateID       = errors.New("duplicate id")
)

// Snapshot is a full copy of the ledger at one point in time.
type Snapshot struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
}

// Reader is the read-only view handed to the derivation components.
type Reader interface {
	Transactions() []core.Transaction
	Categories() []core.Category
	Budgets() []core.Budget
	Transaction(id string) (core.Transaction, bool)
	Category(id string) (core.Category, bool)
	Budget(id string) (core.Budget, bool)
	// Version changes whenever the collections change.
	Version() uint64
}

// Persister loads and saves ledger snapshots. Load reports ok=false when
// nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
	Save(ctx context.Context, snap Snapshot) error
}

// NopPersister keeps nothing; the ledger lives only in memory.
type NopPersister struct{}

func (NopPersister) Load(context.Context) (Snapshot, bool, error) { return Snapshot{}, false, nil }
func (NopPersister) Save(context.Context, Snapshot) error { return nil }

// TransactionPatch carries a partial update; nil fields are left untouched.
type TransactionPatch struct {
	Amount      *float64     `json:"amount,omitempty"`
	Type        *core.TxType `json:"type,omitempty"`
	CategoryID  *string      `json:"categoryId,omitempty"`
	Date        *time.Time   `json:"date,omitempty"`
	Description *string      `json:"description,omitempty"`
	Tags        *[]string    `json:"tags,omitempty"`
}

// CategoryPatch carries a partial category update. The type of a category
// is fixed at creation.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// BudgetPatch carries a partial budget update.
type BudgetPatch struct {
	CategoryID *string            `json:"categoryId,omitempty"`
	Amount     *float64           `json:"amount,omitempty"`
	Period     *core.BudgetPeriod `json:"period,omitempty"`
	StartDate  *time.Time         `json:"startDate,omitempty"`
}

// normalizeDate keeps millisecond precision, matching how dates are stored
// and exported.
func normalizeDate(t time.Time) time.Time {
	return t.Round(0).Truncate(time.Millisecond)
}
