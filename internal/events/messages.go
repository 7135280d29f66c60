package events

import (
	"encoding/json"
	"time"

	"teamledger/internal/core"
)

// Event types published for the notification collaborator.
const (
	TypeExpenseAdded     = "expense.added"
	TypeExpenseRemoved   = "expense.removed"
	TypeExpensesExported = "expenses.exported"
)

// Event is a ledger notification. Expense fields are set for add/remove,
// Count for exports.
type Event struct {
	Type        string    `json:"type"`
	ExpenseID   int64     `json:"expense_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	PaidBy      string    `json:"paid_by,omitempty"`
	Count       int       `json:"count,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func ExpenseAdded(e core.Expense) Event {
	return expenseEvent(TypeExpenseAdded, e)
}

func ExpenseRemoved(e core.Expense) Event {
	return expenseEvent(TypeExpenseRemoved, e)
}

func ExpensesExported(count int) Event {
	return Event{Type: TypeExpensesExported, Count: count, Timestamp: time.Now()}
}

func expenseEvent(typ string, e core.Expense) Event {
	return Event{
		Type:        typ,
		ExpenseID:   e.ID,
		Description: e.Description,
		Category:    string(e.Category),
		AmountCents: e.Amount.Cents,
		PaidBy:      e.PaidBy,
		Timestamp:   time.Now(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
