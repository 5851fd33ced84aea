// Package services wires the ledger store to persistence, budget alerts and
// the cached dashboard views.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tally/internal/amqp"
	"tally/internal/budget"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/store"
)

// ErrSystemCategory is returned when deleting one of the preset categories.
var ErrSystemCategory = errors.New("system categories cannot be deleted")

// AlertPublisher sends budget alerts to whoever records them.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// Options configures a LedgerService. Zero values fall back to sensible
// defaults: no persistence, no alerts, local time.
type Options struct {
	Persister store.Persister
	Publisher AlertPublisher
	// Alerts turns on overspend detection. Without a Publisher crossings
	// are only logged.
	Alerts    bool
	SeedDemo  bool
	CacheSize int
	CacheTTL  time.Duration
	Location  *time.Location
	Now       func() time.Time
	Logger    *log.Logger
}

// LedgerService orchestrates ledger operations across the store, its
// persister and the alert queue.
type LedgerService struct {
	store     *store.Store
	evaluator *budget.Evaluator
	persister store.Persister
	publisher AlertPublisher
	alerts    bool

	views *cache.LRUCache[any]
	group singleflight.Group

	now    func() time.Time
	loc    *time.Location
	logger *log.Logger
	events *log.StructuredLogger

	// mu serializes mutations so the budget statuses seen before and after
	// a change belong to that change alone.
	mu sync.Mutex
}

// Open loads the ledger from opts.Persister. An empty persister starts with
// the system categories, plus demo data when opts.SeedDemo is set.
func Open(ctx context.Context, opts Options) (*LedgerService, error) {
	if opts.Persister == nil {
		opts.Persister = store.NopPersister{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}

	s := &LedgerService{
		persister: opts.Persister,
		publisher: opts.Publisher,
		alerts:    opts.Alerts,
		views:     cache.NewLRUCache[any](opts.CacheSize, opts.CacheTTL),
		now:       opts.Now,
		loc:       opts.Location,
		logger:    opts.Logger.WithComponent(log.ComponentLedger),
	}
	s.events = log.NewStructuredLogger(s.logger)

	snap, ok, err := opts.Persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if ok {
		s.store, err = store.NewFromSnapshot(snap)
		if err != nil {
			return nil, fmt.Errorf("restore ledger: %w", err)
		}
	} else {
		s.store = store.New()
	}
	s.evaluator = budget.NewEvaluator(s.store)
	s.refreshSpent(s.ref(time.Time{}))

	s.logger.InfoContext(ctx, "Ledger loaded",
		"restored", ok,
		"transactions", len(s.store.Transactions()),
		"budgets", len(s.store.Budgets()))

	if !ok && opts.SeedDemo {
		if err := s.SeedDemo(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Reader exposes the store read-only.
func (s *LedgerService) Reader() store.Reader { return s.store }

// Views returns the view cache so it can be registered for expiry.
func (s *LedgerService) Views() *cache.LRUCache[any] { return s.views }

// ref resolves the reference instant for a view: t when set, otherwise now,
// in the configured location.
func (s *LedgerService) ref(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return t.In(s.loc)
}

// mutate applies fn, persists the result and reports budgets that crossed
// their ceiling because of it. When persisting fails the store is restored
// to its state before fn and the error is returned; alert failures are only
// logged.
func (s *LedgerService) mutate(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.ref(time.Time{})
	var before []core.BudgetStatus
	if s.alerts {
		before = s.evaluator.Statuses(now)
	}
	prev := s.store.Snapshot()

	if err := fn(); err != nil {
		return err
	}

	after := s.refreshSpent(now)
	if err := s.persist(ctx, op); err != nil {
		if rerr := s.store.Replace(prev); rerr != nil {
			s.events.LogError(ctx, "Failed to roll back ledger", rerr, log.ComponentLedger, op, log.NewFields())
		}
		return err
	}
	if s.alerts {
		s.notifyCrossed(ctx, budget.Crossed(before, after))
	}
	return nil
}

// refreshSpent stores each budget's current spending on the budget itself.
func (s *LedgerService) refreshSpent(now time.Time) []core.BudgetStatus {
	statuses := s.evaluator.Statuses(now)
	for _, st := range statuses {
		s.store.SetSpent(st.Budget.ID, st.Spent)
	}
	return statuses
}

func (s *LedgerService) persist(ctx context.Context, op string) error {
	if err := s.persister.Save(ctx, s.store.Snapshot()); err != nil {
		s.events.LogError(ctx, "Failed to persist ledger", err, log.ComponentStorage, op,
			log.LogFields{log.FieldVersion: s.store.Version()})
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (s *LedgerService) notifyCrossed(ctx context.Context, crossed []core.BudgetStatus) {
	for _, st := range crossed {
		s.events.LogBudgetExceeded(ctx, st.Budget.ID, st.Budget.CategoryID, string(st.Budget.Period), st.Budget.Amount, st.Spent)

		if s.publisher == nil {
			continue
		}
		var name string
		if c, ok := s.store.Category(st.Budget.CategoryID); ok {
			name = c.Name
		}
		msg := amqp.NewBudgetAlertMessage(st, name)
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish budget alert",
				log.FieldBudgetID, st.Budget.ID,
				log.FieldMessageID, msg.MessageID,
				log.FieldError, err)
		}
	}
}

// Transactions

func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	err := s.mutate(ctx, log.OpCreate, func() (err error) {
		out, err = s.store.AddTransaction(tx)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.events.LogTransactionRecorded(ctx, out.ID, string(out.Type), out.Amount, out.CategoryID)
	return out, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, p store.TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	err := s.mutate(ctx, log.OpUpdate, func() (err error) {
		out, err = s.store.UpdateTransaction(id, p)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return out, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	err := s.mutate(ctx, log.OpDelete, func() error {
		return s.store.DeleteTransaction(id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Categories

func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var out core.Category
	err := s.mutate(ctx, log.OpCreate, func() (err error) {
		out, err = s.store.AddCategory(c)
		return err
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	return out, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, id string, p store.CategoryPatch) (core.Category, error) {
	var out core.Category
	err := s.mutate(ctx, log.OpUpdate, func() (err error) {
		out, err = s.store.UpdateCategory(id, p)
		return err
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return out, nil
}

// DeleteCategory removes a custom category. Transactions and budgets that
// reference it are kept and show up as uncategorized.
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	if store.IsSystemCategory(id) {
		return fmt.Errorf("delete category %s: %w", id, ErrSystemCategory)
	}
	err := s.mutate(ctx, log.OpDelete, func() error {
		if !s.store.DeleteCategory(id) {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

func (s *LedgerService) ResetCategories(ctx context.Context) error {
	return s.mutate(ctx, log.OpUpdate, func() error {
		s.store.ResetCategories()
		return nil
	})
}

// Budgets

func (s *LedgerService) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var id string
	err := s.mutate(ctx, log.OpCreate, func() error {
		out, err := s.store.AddBudget(b)
		id = out.ID
		return err
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("add budget: %w", err)
	}
	out, _ := s.store.Budget(id)
	return out, nil
}

func (s *LedgerService) UpdateBudget(ctx context.Context, id string, p store.BudgetPatch) (core.Budget, error) {
	err := s.mutate(ctx, log.OpUpdate, func() error {
		_, err := s.store.UpdateBudget(id, p)
		return err
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	out, _ := s.store.Budget(id)
	return out, nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) error {
	err := s.mutate(ctx, log.OpDelete, func() error {
		return s.store.DeleteBudget(id)
	})
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// Bulk

// Import replaces the whole ledger with snap.
func (s *LedgerService) Import(ctx context.Context, snap store.Snapshot) error {
	err := s.mutate(ctx, log.OpImport, func() error {
		return s.store.Replace(snap)
	})
	if err != nil {
		return fmt.Errorf("import ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger imported",
		"transactions", len(snap.Transactions),
		"categories", len(snap.Categories),
		"budgets", len(snap.Budgets))
	return nil
}

// Clear drops all transactions and budgets and restores the system
// categories.
func (s *LedgerService) Clear(ctx context.Context) error {
	return s.mutate(ctx, log.OpDelete, func() error {
		s.store.Clear()
		return nil
	})
}

// SeedDemo replaces the ledger with a month of generated activity.
func (s *LedgerService) SeedDemo(ctx context.Context) error {
	now := s.ref(time.Time{})
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0x7a11))
	if err := s.Import(ctx, store.DemoSnapshot(now, rng)); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	return nil
}

// Snapshot copies the current ledger.
func (s *LedgerService) Snapshot() store.Snapshot {
	return s.store.Snapshot()
}
