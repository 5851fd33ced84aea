package storage

import (
	"context"
)

const listCategories = `-- name: ListCategories :many
SELECT id, name, icon, color, type, position FROM categories ORDER BY position
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Icon, &i.Color, &i.Type, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCategory = `-- name: InsertCategory :exec
INSERT INTO categories (id, name, icon, color, type, position) VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, insertCategory, arg.ID, arg.Name, arg.Icon, arg.Color, arg.Type, arg.Position)
	return err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, amount, type, category_id, date, description, position FROM transactions ORDER BY position
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.Amount, &i.Type, &i.CategoryID, &i.Date, &i.Description, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTransaction = `-- name: InsertTransaction :exec
INSERT INTO transactions (id, amount, type, category_id, date, description, position) VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID, arg.Amount, arg.Type, arg.CategoryID, arg.Date, arg.Description, arg.Position)
	return err
}

const listTransactionTags = `-- name: ListTransactionTags :many
SELECT transaction_id, tag, position FROM transaction_tags ORDER BY transaction_id, position
`

func (q *Queries) ListTransactionTags(ctx context.Context) ([]TransactionTag, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionTag
	for rows.Next() {
		var i TransactionTag
		if err := rows.Scan(&i.TransactionID, &i.Tag, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTransactionTag = `-- name: InsertTransactionTag :exec
INSERT INTO transaction_tags (transaction_id, tag, position) VALUES (?, ?, ?)
`

func (q *Queries) InsertTransactionTag(ctx context.Context, arg TransactionTag) error {
	_, err := q.db.ExecContext(ctx, insertTransactionTag, arg.TransactionID, arg.Tag, arg.Position)
	return err
}

const listBudgets = `-- name: ListBudgets :many
SELECT id, category_id, amount, spent, period, start_date, position FROM budgets ORDER BY position
`

func (q *Queries) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.Amount, &i.Spent, &i.Period, &i.StartDate, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertBudget = `-- name: InsertBudget :exec
INSERT INTO budgets (id, category_id, amount, spent, period, start_date, position) VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertBudget(ctx context.Context, arg Budget) error {
	_, err := q.db.ExecContext(ctx, insertBudget,
		arg.ID, arg.CategoryID, arg.Amount, arg.Spent, arg.Period, arg.StartDate, arg.Position)
	return err
}

const countCategories = `-- name: CountCategories :one
SELECT COUNT(*) FROM categories
`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategories)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllTransactionTags = `-- name: DeleteAllTransactionTags :exec
DELETE FROM transaction_tags
`

func (q *Queries) DeleteAllTransactionTags(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactionTags)
	return err
}

const deleteAllTransactions = `-- name: DeleteAllTransactions :exec
DELETE FROM transactions
`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const deleteAllCategories = `-- name: DeleteAllCategories :exec
DELETE FROM categories
`

func (q *Queries) DeleteAllCategories(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllCategories)
	return err
}

const deleteAllBudgets = `-- name: DeleteAllBudgets :exec
DELETE FROM budgets
`

func (q *Queries) DeleteAllBudgets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBudgets)
	return err
}

const insertBudgetAlert = `-- name: InsertBudgetAlert :execrows
INSERT OR IGNORE INTO budget_alerts (
    message_id, budget_id, category_id, category_name, amount, spent, period, window_start, window_end
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertBudgetAlertParams struct {
	MessageID    string
	BudgetID     string
	CategoryID   string
	CategoryName string
	Amount       float64
	Spent        float64
	Period       string
	WindowStart  string
	WindowEnd    string
}

func (q *Queries) InsertBudgetAlert(ctx context.Context, arg InsertBudgetAlertParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertBudgetAlert,
		arg.MessageID,
		arg.BudgetID,
		arg.CategoryID,
		arg.CategoryName,
		arg.Amount,
		arg.Spent,
		arg.Period,
		arg.WindowStart,
		arg.WindowEnd,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBudgetAlerts = `-- name: ListBudgetAlerts :many
SELECT id, message_id, budget_id, category_id, category_name, amount, spent, period, window_start, window_end, created_at
FROM budget_alerts
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListBudgetAlerts(ctx context.Context, limit int64) ([]BudgetAlert, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetAlerts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetAlert
	for rows.Next() {
		var i BudgetAlert
		if err := rows.Scan(
			&i.ID,
			&i.MessageID,
			&i.BudgetID,
			&i.CategoryID,
			&i.CategoryName,
			&i.Amount,
			&i.Spent,
			&i.Period,
			&i.WindowStart,
			&i.WindowEnd,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
