// Package backup reads and writes portable copies of the ledger: a JSON
// document that can be imported back, and a CSV export of transactions.
package backup

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/store"
)

// FormatVersion is written into every document. Documents without a
// version are accepted as version 1.
const FormatVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrEmptyDocument      = errors.New("backup contains no ledger data")
)

// Document is the JSON backup format. A collection missing from an imported
// document leaves the current one in place; an empty one clears it.
type Document struct {
	Version      int                `json:"version"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
}

func NewDocument(snap store.Snapshot, now time.Time) Document {
	return Document{
		Version:      FormatVersion,
		ExportedAt:   now,
		Transactions: nonNil(snap.Transactions),
		Categories:   nonNil(snap.Categories),
		Budgets:      nonNil(snap.Budgets),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Read decodes a backup document.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode backup: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if doc.Version > FormatVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Transactions == nil && doc.Categories == nil && doc.Budgets == nil {
		return Document{}, ErrEmptyDocument
	}
	return doc, nil
}

// Apply returns current with every collection present in d replaced.
func (d Document) Apply(current store.Snapshot) store.Snapshot {
	out := current
	if d.Transactions != nil {
		out.Transactions = d.Transactions
	}
	if d.Categories != nil {
		out.Categories = d.Categories
	}
	if d.Budgets != nil {
		out.Budgets = d.Budgets
	}
	return out
}

// FileName is the suggested download name, e.g. tally-backup-2025-03-15.json.
func FileName(kind string, now time.Time, ext string) string {
	return "tally-" + kind + "-" + now.Format(time.DateOnly) + "." + ext
}

var csvHeader = []string{"Type", "Amount", "Category", "Date", "Description", "Tags"}

const uncategorized = "Uncategorized"

// WriteCSV exports the transactions of snap, one row each in store order.
// Dates are written as calendar days in loc; tags are joined with ';'.
func WriteCSV(w io.Writer, snap store.Snapshot, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	names := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range snap.Transactions {
		name, ok := names[tx.CategoryID]
		if !ok {
			name = uncategorized
		}
		row := []string{
			typeLabel(tx.Type),
			strconv.FormatFloat(core.SafeAmount(tx.Amount), 'f', -1, 64),
			name,
			tx.Date.In(loc).Format(time.DateOnly),
			tx.Description,
			strings.Join(tx.Tags, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func typeLabel(t core.TxType) string {
	if t == core.Income {
		return "Income"
	}
	return "Expense"
}
