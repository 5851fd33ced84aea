package storage

import (
	"database/sql"
)

type Category struct {
	ID       string
	Name     string
	Icon     string
	Color    string
	Type     string
	Position int64
}

type Transaction struct {
	ID          string
	Amount      float64
	Type        string
	CategoryID  string
	Date        string
	Description string
	Position    int64
}

type TransactionTag struct {
	TransactionID string
	Tag           string
	Position      int64
}

type Budget struct {
	ID         string
	CategoryID string
	Amount     float64
	Spent      float64
	Period     string
	StartDate  string
	Position   int64
}

type BudgetAlert struct {
	ID           int64
	MessageID    string
	BudgetID     string
	CategoryID   string
	CategoryName string
	Amount       float64
	Spent        float64
	Period       string
	WindowStart  string
	WindowEnd    string
	CreatedAt    sql.NullTime
}
