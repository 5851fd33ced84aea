package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
)

// Store is the in-memory ledger. It is safe for concurrent use; every read
// returns a copy so callers can never observe or cause a mutation.
type Store struct {
	mu      sync.RWMutex
	txs     []core.Transaction
	cats    []core.Category
	budgets []core.Budget
	version uint64
}

// New returns a store holding only the system categories.
func New() *Store {
	return &Store{cats: DefaultCategories()}
}

// NewFromSnapshot returns a store loaded with snap. An empty category list
// is replaced by the system categories.
func NewFromSnapshot(snap Snapshot) (*Store, error) {
	s := New()
	if err := s.Replace(snap); err != nil {
		return nil, err
	}
	s.version = 0
	return s, nil
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func (s *Store) touch() { s.version++ }

// Version changes on every mutation of the collections.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Transactions returns a copy of all transactions in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	for i, tx := range s.txs {
		out[i] = tx.Clone()
	}
	return out
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.cats...)
}

func (s *Store) Budgets() []core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Budget(nil), s.budgets...)
}

func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.txIndex(id); i >= 0 {
		return s.txs[i].Clone(), true
	}
	return core.Transaction{}, false
}

func (s *Store) Category(id string) (core.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.catIndex(id); i >= 0 {
		return s.cats[i], true
	}
	return core.Category{}, false
}

func (s *Store) Budget(id string) (core.Budget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.budgetIndex(id); i >= 0 {
		return s.budgets[i], true
	}
	return core.Budget{}, false
}

// Snapshot returns a deep copy of the whole ledger.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Transactions: s.Transactions(),
		Categories:   s.Categories(),
		Budgets:      s.Budgets(),
	}
}

func (s *Store) txIndex(id string) int {
	for i := range s.txs {
		if s.txs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) catIndex(id string) int {
	for i := range s.cats {
		if s.cats[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) budgetIndex(id string) int {
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			return i
		}
	}
	return -1
}

// Transactions

// AddTransaction validates tx, assigns an id when missing or already taken
// and stores it. Transactions may reference categories that do not exist.
func (s *Store) AddTransaction(tx core.Transaction) (core.Transaction, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	tx.Tags = core.NormalizeTags(tx.Tags)
	tx.Date = normalizeDate(tx.Date)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" || s.txIndex(tx.ID) >= 0 {
		tx.ID = newID("tx")
	}
	s.txs = append(s.txs, tx.Clone())
	s.touch()
	return tx, nil
}

// UpdateTransaction applies p to the transaction with the given id.
func (s *Store) UpdateTransaction(id string, p TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	tx := s.txs[i].Clone()
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.CategoryID != nil {
		tx.CategoryID = *p.CategoryID
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Description != nil {
		tx.Description = strings.TrimSpace(*p.Description)
	}
	if p.Tags != nil {
		tx.Tags = core.NormalizeTags(*p.Tags)
	}
	tx.Date = normalizeDate(tx.Date)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.txs[i] = tx
	s.touch()
	return tx.Clone(), nil
}

func (s *Store) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	s.touch()
	return nil
}

// Categories

func (s *Store) nameTaken(name string, t core.TxType, exceptID string) bool {
	for _, c := range s.cats {
		if c.ID != exceptID && c.Type == t && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// AddCategory stores a new category. Names are unique per type, ignoring case.
func (s *Store) AddCategory(c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(c.Name, c.Type, "") {
		return core.Category{}, fmt.Errorf("%q: %w", c.Name, ErrDuplicateCategory)
	}
	if c.ID == "" || s.catIndex(c.ID) >= 0 {
		c.ID = newID("cat")
	}
	s.cats = append(s.cats, c)
	s.touch()
	return c, nil
}

func (s *Store) UpdateCategory(id string, p CategoryPatch) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.catIndex(id)
	if i < 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	c := s.cats[i]
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if s.nameTaken(c.Name, c.Type, c.ID) {
		return core.Category{}, fmt.Errorf("%q: %w", c.Name, ErrDuplicateCategory)
	}
	s.cats[i] = c
	s.touch()
	return c, nil
}

// DeleteCategory removes a user-created category. It reports false for
// system categories and unknown ids. Transactions and budgets that still
// reference the category are kept as they are.
func (s *Store) DeleteCategory(id string) bool {
	if IsSystemCategory(id) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.catIndex(id)
	if i < 0 {
		return false
	}
	s.cats = append(s.cats[:i], s.cats[i+1:]...)
	s.touch()
	return true
}

// ResetCategories restores the system categories, dropping custom ones.
func (s *Store) ResetCategories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = DefaultCategories()
	s.touch()
}

// Budgets

// AddBudget stores a new budget. The category must exist and be an expense
// category. More than one budget per category is accepted.
func (s *Store) AddBudget(b core.Budget) (core.Budget, error) {
	b.Spent = 0
	b.StartDate = normalizeDate(b.StartDate)
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBudgetCategory(b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" || s.budgetIndex(b.ID) >= 0 {
		b.ID = newID("budget")
	}
	s.budgets = append(s.budgets, b)
	s.touch()
	return b, nil
}

func (s *Store) checkBudgetCategory(id string) error {
	i := s.catIndex(id)
	if i < 0 || s.cats[i].Type != core.Expense {
		return fmt.Errorf("budget category %s: %w", id, ErrUnknownCategory)
	}
	return nil
}

func (s *Store) UpdateBudget(id string, p BudgetPatch) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.budgetIndex(id)
	if i < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	b := s.budgets[i]
	if p.CategoryID != nil {
		if err := s.checkBudgetCategory(*p.CategoryID); err != nil {
			return core.Budget{}, err
		}
		b.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.StartDate != nil {
		b.StartDate = normalizeDate(*p.StartDate)
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.budgets[i] = b
	s.touch()
	return b, nil
}

func (s *Store) DeleteBudget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.budgetIndex(id)
	if i < 0 {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
	s.touch()
	return nil
}

// SetSpent refreshes the cached spent value of a budget. It does not change
// the store version since spent is derived data.
func (s *Store) SetSpent(id string, spent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.budgetIndex(id); i >= 0 {
		s.budgets[i].Spent = spent
	}
}

// Bulk

// Replace swaps the whole ledger for snap after validating every record.
// Ids must be unique within each collection. On error the store is left
// unchanged. Imported budgets are accepted even
// when their category is missing; the evaluator tolerates it.
func (s *Store) Replace(snap Snapshot) error {
	txs := make([]core.Transaction, 0, len(snap.Transactions))
	seen := make(map[string]bool, len(snap.Transactions))
	for i, tx := range snap.Transactions {
		tx = tx.Clone()
		tx.Tags = core.NormalizeTags(tx.Tags)
		tx.Date = normalizeDate(tx.Date)
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		if tx.ID == "" {
			tx.ID = newID("tx")
		}
		if seen[tx.ID] {
			return fmt.Errorf("transaction %d %q: %w", i, tx.ID, ErrDuplicateID)
		}
		seen[tx.ID] = true
		txs = append(txs, tx)
	}
	cats := make([]core.Category, 0, len(snap.Categories))
	seen = make(map[string]bool, len(snap.Categories))
	for i, c := range snap.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("category %d: %w", i, err)
		}
		if c.ID == "" {
			c.ID = newID("cat")
		}
		if seen[c.ID] {
			return fmt.Errorf("category %d %q: %w", i, c.ID, ErrDuplicateID)
		}
		seen[c.ID] = true
		cats = append(cats, c)
	}
	if len(cats) == 0 {
		cats = DefaultCategories()
	}
	budgets := make([]core.Budget, 0, len(snap.Budgets))
	seen = make(map[string]bool, len(snap.Budgets))
	for i, b := range snap.Budgets {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("budget %d: %w", i, err)
		}
		if b.ID == "" {
			b.ID = newID("budget")
		}
		if seen[b.ID] {
			return fmt.Errorf("budget %d %q: %w", i, b.ID, ErrDuplicateID)
		}
		seen[b.ID] = true
		budgets = append(budgets, b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs, s.cats, s.budgets = txs, cats, budgets
	s.touch()
	return nil
}

// Clear removes all transactions and budgets and restores the system
// categories.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = nil
	s.budgets = nil
	s.cats = DefaultCategories()
	s.touch()
}
