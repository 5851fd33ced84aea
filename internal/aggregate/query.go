package aggregate

import (
	"sort"
	"strings"

	"tally/internal/core"
)

// SortField selects the ordering of a transaction list.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
)

// Query describes a filtered, ordered view of transactions. Zero fields do
// not filter.
type Query struct {
	Type       core.TxType
	CategoryID string
	Tag        string
	Search     string
	Window     *core.Window
	SortBy     SortField
	Ascending  bool
}

// CategoryLookup resolves a category id; ok is false for dangling ids.
type CategoryLookup func(id string) (core.Category, bool)

// Select applies q to list and returns a new, sorted slice. The search term
// matches case-insensitively against the description and the category name;
// a dangling category simply matches on description only. The default order
// is newest first.
func Select(list []core.Transaction, q Query, lookup CategoryLookup) []core.Transaction {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := filter(list, func(tx core.Transaction) bool {
		if q.Type != "" && tx.Type != q.Type {
			return false
		}
		if q.CategoryID != "" && tx.CategoryID != q.CategoryID {
			return false
		}
		if q.Tag != "" && !tx.HasTag(q.Tag) {
			return false
		}
		if q.Window != nil && !q.Window.Contains(tx.Date) {
			return false
		}
		if term == "" {
			return true
		}
		if strings.Contains(strings.ToLower(tx.Description), term) {
			return true
		}
		if lookup != nil {
			if c, ok := lookup(tx.CategoryID); ok && strings.Contains(strings.ToLower(c.Name), term) {
				return true
			}
		}
		return false
	})

	less := func(i, j int) bool { return out[i].Date.Before(out[j].Date) }
	if q.SortBy == SortByAmount {
		less = func(i, j int) bool { return out[i].Amount < out[j].Amount }
	}
	if q.Ascending {
		sort.SliceStable(out, less)
	} else {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	}
	return out
}
