package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"
	"tally/internal/store"

	_ "modernc.org/sqlite"
)

// dateLayout keeps millisecond precision and the original offset.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements store.Persister. A database without categories has never
// been saved, so ok is false.
func (r *SQLiteRepository) Load(ctx context.Context) (store.Snapshot, bool, error) {
	var snap store.Snapshot

	n, err := r.queries.CountCategories(ctx)
	if err != nil {
		return snap, false, fmt.Errorf("count categories: %w", err)
	}
	if n == 0 {
		return snap, false, nil
	}

	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return snap, false, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		snap.Categories = append(snap.Categories, core.Category{
			ID:    c.ID,
			Name:  c.Name,
			Icon:  c.Icon,
			Color: c.Color,
			Type:  core.TxType(c.Type),
		})
	}

	tags, err := r.queries.ListTransactionTags(ctx)
	if err != nil {
		return snap, false, fmt.Errorf("list transaction tags: %w", err)
	}
	tagsByTx := make(map[string][]string)
	for _, t := range tags {
		tagsByTx[t.TransactionID] = append(tagsByTx[t.TransactionID], t.Tag)
	}

	txs, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return snap, false, fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range txs {
		date, err := time.Parse(dateLayout, t.Date)
		if err != nil {
			return snap, false, fmt.Errorf("parse date of transaction %s: %w", t.ID, err)
		}
		snap.Transactions = append(snap.Transactions, core.Transaction{
			ID:          t.ID,
			Amount:      t.Amount,
			Type:        core.TxType(t.Type),
			CategoryID:  t.CategoryID,
			Date:        date,
			Description: t.Description,
			Tags:        tagsByTx[t.ID],
		})
	}

	budgets, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return snap, false, fmt.Errorf("list budgets: %w", err)
	}
	for _, b := range budgets {
		var start time.Time
		if b.StartDate != "" {
			if start, err = time.Parse(dateLayout, b.StartDate); err != nil {
				return snap, false, fmt.Errorf("parse start date of budget %s: %w", b.ID, err)
			}
		}
		snap.Budgets = append(snap.Budgets, core.Budget{
			ID:         b.ID,
			CategoryID: b.CategoryID,
			Amount:     b.Amount,
			Spent:      b.Spent,
			Period:     core.BudgetPeriod(b.Period),
			StartDate:  start,
		})
	}

	slog.DebugContext(ctx, "Ledger loaded from SQLite",
		"transactions", len(snap.Transactions),
		"categories", len(snap.Categories),
		"budgets", len(snap.Budgets))

	return snap, true, nil
}

// Save implements store.Persister by replacing every table inside one
// database transaction.
func (r *SQLiteRepository) Save(ctx context.Context, snap store.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	q := r.queries.WithTx(tx)

	if err = q.DeleteAllTransactionTags(ctx); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if err = q.DeleteAllTransactions(ctx); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if err = q.DeleteAllBudgets(ctx); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}
	if err = q.DeleteAllCategories(ctx); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for i, c := range snap.Categories {
		if err = q.InsertCategory(ctx, Category{
			ID:       c.ID,
			Name:     c.Name,
			Icon:     c.Icon,
			Color:    c.Color,
			Type:     string(c.Type),
			Position: int64(i),
		}); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for i, t := range snap.Transactions {
		if err = q.InsertTransaction(ctx, Transaction{
			ID:          t.ID,
			Amount:      t.Amount,
			Type:        string(t.Type),
			CategoryID:  t.CategoryID,
			Date:        t.Date.Format(dateLayout),
			Description: t.Description,
			Position:    int64(i),
		}); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
		for j, tag := range t.Tags {
			if err = q.InsertTransactionTag(ctx, TransactionTag{TransactionID: t.ID, Tag: tag, Position: int64(j)}); err != nil {
				return fmt.Errorf("insert tag for transaction %s: %w", t.ID, err)
			}
		}
	}

	for i, b := range snap.Budgets {
		start := ""
		if !b.StartDate.IsZero() {
			start = b.StartDate.Format(dateLayout)
		}
		if err = q.InsertBudget(ctx, Budget{
			ID:         b.ID,
			CategoryID: b.CategoryID,
			Amount:     b.Amount,
			Spent:      b.Spent,
			Period:     string(b.Period),
			StartDate:  start,
			Position:   int64(i),
		}); err != nil {
			return fmt.Errorf("insert budget %s: %w", b.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite",
		"transactions", len(snap.Transactions),
		"categories", len(snap.Categories),
		"budgets", len(snap.Budgets))
	return nil
}

// AlertRecord is a budget alert as received by the worker.
type AlertRecord struct {
	MessageID    string
	BudgetID     string
	CategoryID   string
	CategoryName string
	Amount       float64
	Spent        float64
	Period       core.BudgetPeriod
	Window       core.Window
	CreatedAt    time.Time
}

// RecordAlert stores an alert once per message id. It reports whether the
// alert was new.
func (r *SQLiteRepository) RecordAlert(ctx context.Context, a AlertRecord) (bool, error) {
	n, err := r.queries.InsertBudgetAlert(ctx, InsertBudgetAlertParams{
		MessageID:    a.MessageID,
		BudgetID:     a.BudgetID,
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		Amount:       a.Amount,
		Spent:        a.Spent,
		Period:       string(a.Period),
		WindowStart:  a.Window.Start.Format(dateLayout),
		WindowEnd:    a.Window.End.Format(dateLayout),
	})
	if err != nil {
		return false, fmt.Errorf("insert budget alert: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Budget alert already recorded", "message_id", a.MessageID)
		return false, nil
	}
	slog.InfoContext(ctx, "Budget alert recorded",
		"message_id", a.MessageID,
		"budget_id", a.BudgetID,
		"spent", a.Spent,
		"amount", a.Amount)
	return true, nil
}

// ListAlerts returns the most recent alerts first.
func (r *SQLiteRepository) ListAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	rows, err := r.queries.ListBudgetAlerts(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list budget alerts: %w", err)
	}
	out := make([]AlertRecord, 0, len(rows))
	for _, a := range rows {
		start, err := time.Parse(dateLayout, a.WindowStart)
		if err != nil {
			return nil, fmt.Errorf("parse alert window start: %w", err)
		}
		end, err := time.Parse(dateLayout, a.WindowEnd)
		if err != nil {
			return nil, fmt.Errorf("parse alert window end: %w", err)
		}
		out = append(out, AlertRecord{
			MessageID:    a.MessageID,
			BudgetID:     a.BudgetID,
			CategoryID:   a.CategoryID,
			CategoryName: a.CategoryName,
			Amount:       a.Amount,
			Spent:        a.Spent,
			Period:       core.BudgetPeriod(a.Period),
			Window:       core.Window{Start: start, End: end},
			CreatedAt:    a.CreatedAt.Time,
		})
	}
	return out, nil
}
