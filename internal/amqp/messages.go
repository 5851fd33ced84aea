package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

// BudgetAlertMessage announces that a budget's spending reached its ceiling
// for the current period. MessageID is derived from the budget and its
// window, so a budget alerts at most once per period.
type BudgetAlertMessage struct {
	MessageID    string            `json:"messageId"`
	BudgetID     string            `json:"budgetId"`
	CategoryID   string            `json:"categoryId"`
	CategoryName string            `json:"categoryName,omitempty"`
	Amount       float64           `json:"amount"`
	Spent        float64           `json:"spent"`
	Progress     float64           `json:"progress"`
	Period       core.BudgetPeriod `json:"period"`
	WindowStart  time.Time         `json:"windowStart"`
	WindowEnd    time.Time         `json:"windowEnd"`
	Timestamp    time.Time         `json:"timestamp"`
}

var ErrIncompleteAlert = errors.New("alert message missing budget or message id")

var alertNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("tally.budget-alert"))

// AlertID is the message id for budgetID crossing its ceiling in the window
// starting at windowStart.
func AlertID(budgetID string, windowStart time.Time) string {
	name := budgetID + "|" + windowStart.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(alertNamespace, []byte(name)).String()
}

// NewBudgetAlertMessage builds an alert from an evaluated budget.
func NewBudgetAlertMessage(s core.BudgetStatus, categoryName string) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		MessageID:    AlertID(s.Budget.ID, s.Window.Start),
		BudgetID:     s.Budget.ID,
		CategoryID:   s.Budget.CategoryID,
		CategoryName: categoryName,
		Amount:       s.Budget.Amount,
		Spent:        s.Spent,
		Progress:     s.Progress,
		Period:       s.Budget.Period,
		WindowStart:  s.Window.Start,
		WindowEnd:    s.Window.End,
		Timestamp:    time.Now(),
	}
}

// Window returns the budget period the alert refers to.
func (m *BudgetAlertMessage) Window() core.Window {
	return core.Window{Start: m.WindowStart, End: m.WindowEnd}
}

// Overspent is how far spending went past the ceiling; 0 when exactly at it.
func (m *BudgetAlertMessage) Overspent() float64 {
	if m.Spent <= m.Amount {
		return 0
	}
	return m.Spent - m.Amount
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes and checks a message body.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.MessageID == "" || msg.BudgetID == "" {
		return nil, ErrIncompleteAlert
	}
	return &msg, nil
}
