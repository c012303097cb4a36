// Package view holds the typed view-model of the expense page and renders it
// to escaped HTML fragments.
//
// Every type here is a value. The controller builds new values from fetch
// results and swaps them in; nothing is mutated in place.
package view

import (
	"expensetracker/internal/core"
	"expensetracker/internal/notify"
)

const (
	EmptyListMessage = "No expenses yet. Add your first expense!"
	DeletePrompt     = "Are you sure you want to delete this expense?"
)

// FormState mirrors the five inputs of the add-expense form as typed text.
type FormState struct {
	Title       string
	Amount      string
	Category    string
	Date        string
	Description string
}

// NewForm returns an empty form with the date defaulted to today.
func NewForm(today core.Date) FormState {
	return FormState{Date: today.String()}
}

// Categories lists the select options in display order.
func (FormState) Categories() []core.Category {
	return core.Categories()
}

type ExpenseRow struct {
	ID          int64
	Title       string
	Category    string
	BadgeClass  string
	Date        string
	Description string
	Amount      string
}

func NewExpenseRow(e core.Expense) ExpenseRow {
	return ExpenseRow{
		ID:          e.ID,
		Title:       e.Title,
		Category:    e.Category.String(),
		BadgeClass:  e.Category.BadgeClass(),
		Date:        e.Date.Display(),
		Description: e.Description,
		Amount:      e.Amount.Format(),
	}
}

type ListView struct {
	Rows []ExpenseRow
}

// NewListView keeps the backend's order.
func NewListView(items []core.Expense) ListView {
	rows := make([]ExpenseRow, 0, len(items))
	for _, e := range items {
		rows = append(rows, NewExpenseRow(e))
	}
	return ListView{Rows: rows}
}

func (l ListView) Empty() bool { return len(l.Rows) == 0 }

func (ListView) Placeholder() string { return EmptyListMessage }

type SummaryView struct {
	Total   string
	Monthly string
	Count   int
}

func NewSummaryView(s core.Summary, count int) SummaryView {
	return SummaryView{
		Total:   s.Total.Format(),
		Monthly: s.Monthly.Format(),
		Count:   count,
	}
}

// EmptySummary is shown before the first successful summary fetch.
func EmptySummary() SummaryView {
	return NewSummaryView(core.Summary{}, 0)
}

type Model struct {
	Form          FormState
	List          ListView
	Summary       SummaryView
	Notifications []notify.Notification
}

// NewModel is the state of a freshly opened page.
func NewModel(today core.Date) Model {
	return Model{
		Form:    NewForm(today),
		List:    ListView{},
		Summary: EmptySummary(),
	}
}
