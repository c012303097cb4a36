package amqp

import (
	"encoding/json"
	"time"

	"expensetracker/internal/core"
)

// Routing keys on the expenses topic exchange.
const (
	RoutingExpenseCreated = "expense.created"
	RoutingExpenseUpdated = "expense.updated"
	RoutingExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is published after a change has been committed to storage.
// Deletions carry only the id.
type ExpenseEvent struct {
	Type      string        `json:"type"`
	ID        int64         `json:"id"`
	Expense   *core.Expense `json:"expense,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewExpenseCreatedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{Type: RoutingExpenseCreated, ID: e.ID, Expense: &e, Timestamp: time.Now().UTC()}
}

func NewExpenseUpdatedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{Type: RoutingExpenseUpdated, ID: e.ID, Expense: &e, Timestamp: time.Now().UTC()}
}

func NewExpenseDeletedEvent(id int64) *ExpenseEvent {
	return &ExpenseEvent{Type: RoutingExpenseDeleted, ID: id, Timestamp: time.Now().UTC()}
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
