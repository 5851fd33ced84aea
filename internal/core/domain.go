package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

type (
	// TxType discriminates income from expense records and categories.
	TxType string

	// BudgetPeriod is the recurrence a budget ceiling applies to.
	BudgetPeriod string

	Transaction struct {
		ID          string    `json:"id"`
		Amount      float64   `json:"amount"`
		Type        TxType    `json:"type"`
		CategoryID  string    `json:"categoryId"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		Tags        []string  `json:"tags,omitempty"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
		Type  TxType `json:"type"`
	}

	Budget struct {
		ID         string       `json:"id"`
		CategoryID string       `json:"categoryId"`
		Amount     float64      `json:"amount"`
		Spent      float64      `json:"spent"` // cached, recomputed on demand
		Period     BudgetPeriod `json:"period"`
		StartDate  time.Time    `json:"startDate"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrEmptyName       = errors.New("empty category name")
	ErrEmptyCategory   = errors.New("empty category reference")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrDescriptionSize = errors.New("description too long (max 200 characters)")
)

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// Valid reports whether p is one of the known budget periods.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// ValidAmount rejects zero, negative, NaN and infinite values.
func ValidAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := ValidAmount(t.Amount); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionSize
	}
	return nil
}

// HasTag reports whether tag is one of the transaction's labels.
func (t Transaction) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with t.
func (t Transaction) Clone() Transaction {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := ValidAmount(b.Amount); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

// NormalizeTags trims labels, drops blanks and duplicates, keeping first-seen order.
func NormalizeTags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
