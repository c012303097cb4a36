// Package controller implements the client side of the expense tracker: it
// turns user actions into API requests and keeps the page's view-model in
// step with the backend.
//
// The list and summary shown to the user are never authoritative. After every
// successful mutation both are discarded and fetched again.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/api"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/notify"
	"expensetracker/internal/view"
)

// User-facing messages.
const (
	MsgExpenseAdded      = "Expense added successfully!"
	MsgAddFailed         = "Failed to add expense"
	MsgAddError          = "Error adding expense"
	MsgLoadExpensesError = "Error loading expenses"
	MsgLoadSummaryError  = "Error loading summary"
	MsgExpenseDeleted    = "Expense deleted successfully!"
	MsgDeleteFailed      = "Failed to delete expense"
	MsgDeleteError       = "Error deleting expense"
	MsgExpenseUpdated    = "Expense updated successfully!"
	MsgUpdateFailed      = "Failed to update expense"
	MsgUpdateError       = "Error updating expense"
	DeletePrompt         = view.DeletePrompt
)

// API is the subset of the backend client the controller uses.
type API interface {
	CreateExpense(ctx context.Context, e core.Expense) error
	UpdateExpense(ctx context.Context, id int64, e core.Expense) error
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	GetSummary(ctx context.Context) (core.Summary, error)
}

type Notifier interface {
	Show(sev notify.Severity, message string) string
	Active() []notify.Notification
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed and Declined are fixed answers, handy when the confirmation was
// collected before the request reached the server.
var (
	Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	Declined  Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
)

type Option func(*Controller)

// WithNow sets the clock used for the form's default date.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger.WithComponent(log.ComponentController)
		}
	}
}

type Controller struct {
	api      API
	notifier Notifier
	now      func() time.Time
	logger   *log.Logger

	mu    sync.RWMutex
	model view.Model
}

func New(client API, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		api:      client,
		notifier: notifier,
		now:      time.Now,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.model = view.NewModel(c.today())
	return c
}

func (c *Controller) today() core.Date {
	return core.DateOf(c.now())
}

// Model returns a snapshot of the view-model with the live notifications.
func (c *Controller) Model() view.Model {
	c.mu.RLock()
	m := c.model
	c.mu.RUnlock()
	m.Notifications = c.notifier.Active()
	return m
}

func (c *Controller) swap(f func(m *view.Model)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.model
	f(&next)
	c.model = next
}

// Initialize resets the form date to today and loads list and summary.
func (c *Controller) Initialize(ctx context.Context) error {
	today := c.today()
	c.swap(func(m *view.Model) { m.Form.Date = today.String() })
	return c.refreshAll(ctx)
}

// Refresh reloads list and summary without touching the form.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.refreshAll(ctx)
}

// refreshAll runs both refreshes concurrently. They finish in any order and
// a failure in one never cancels the other. The summary refresh fetches the
// list again, so one broken endpoint can fail both; the cycle posts a single
// error notification, the list's if it failed.
func (c *Controller) refreshAll(ctx context.Context) error {
	var g errgroup.Group
	var listErr, summaryErr error
	g.Go(func() error {
		listErr = c.refreshList(ctx)
		return nil
	})
	g.Go(func() error {
		summaryErr = c.refreshSummary(ctx)
		return nil
	})
	_ = g.Wait()

	switch {
	case listErr != nil:
		c.notifier.Show(notify.Error, MsgLoadExpensesError)
	case summaryErr != nil:
		c.notifier.Show(notify.Error, MsgLoadSummaryError)
	}
	return errors.Join(listErr, summaryErr)
}

// CreateExpense submits the form. On failure the form is kept as typed.
func (c *Controller) CreateExpense(ctx context.Context, form view.FormState) error {
	e, err := expenseFromForm(form)
	if err != nil {
		c.swap(func(m *view.Model) { m.Form = form })
		c.logger.WarnContext(ctx, "Rejected expense form", log.FieldOperation, log.OpCreate, log.FieldError, err)
		c.notifier.Show(notify.Error, MsgAddFailed)
		return fmt.Errorf("create expense: %w", err)
	}

	if err := c.api.CreateExpense(ctx, e); err != nil {
		c.swap(func(m *view.Model) { m.Form = form })
		c.logger.ErrorContext(ctx, "Failed to create expense",
			log.NewFields().
				WithOperation(log.OpCreate).
				WithExpense(0, e.Title, e.Amount.String(), e.Category.String()).
				WithError(err).
				ToSlice()...)
		c.notifier.Show(notify.Error, failureMessage(err, MsgAddFailed, MsgAddError))
		return fmt.Errorf("create expense: %w", err)
	}

	c.logger.InfoContext(ctx, "Expense created",
		log.FieldOperation, log.OpCreate,
		log.FieldTitle, e.Title,
		log.FieldAmount, e.Amount.String(),
		log.FieldCategory, e.Category.String())

	today := c.today()
	c.swap(func(m *view.Model) { m.Form = view.NewForm(today) })
	_ = c.refreshAll(ctx)
	c.notifier.Show(notify.Success, MsgExpenseAdded)
	return nil
}

// UpdateExpense replaces expense id with the edited fields. The add form is
// left alone either way.
func (c *Controller) UpdateExpense(ctx context.Context, id int64, form view.FormState) error {
	e, err := expenseFromForm(form)
	if err != nil {
		c.logger.WarnContext(ctx, "Rejected expense edit",
			log.FieldOperation, log.OpUpdate, log.FieldExpenseID, id, log.FieldError, err)
		c.notifier.Show(notify.Error, MsgUpdateFailed)
		return fmt.Errorf("update expense %d: %w", id, err)
	}

	if err := c.api.UpdateExpense(ctx, id, e); err != nil {
		c.logger.ErrorContext(ctx, "Failed to update expense",
			log.NewFields().
				WithOperation(log.OpUpdate).
				WithExpense(id, e.Title, e.Amount.String(), e.Category.String()).
				WithError(err).
				ToSlice()...)
		c.notifier.Show(notify.Error, failureMessage(err, MsgUpdateFailed, MsgUpdateError))
		return fmt.Errorf("update expense %d: %w", id, err)
	}

	c.logger.InfoContext(ctx, "Expense updated", log.FieldOperation, log.OpUpdate, log.FieldExpenseID, id)
	_ = c.refreshAll(ctx)
	c.notifier.Show(notify.Success, MsgExpenseUpdated)
	return nil
}

func expenseFromForm(form view.FormState) (core.Expense, error) {
	amount, err := core.ParseAmount(form.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(form.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Title:       form.Title,
		Amount:      amount,
		Category:    core.Category(form.Category),
		Date:        date,
		Description: form.Description,
	}, nil
}

// RefreshList replaces the displayed list with the backend's collection.
func (c *Controller) RefreshList(ctx context.Context) error {
	if err := c.refreshList(ctx); err != nil {
		c.notifier.Show(notify.Error, MsgLoadExpensesError)
		return err
	}
	return nil
}

func (c *Controller) refreshList(ctx context.Context) error {
	items, err := c.api.ListExpenses(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to load expenses", log.FieldOperation, log.OpList, log.FieldError, err)
		return fmt.Errorf("refresh list: %w", err)
	}
	list := view.NewListView(items)
	c.swap(func(m *view.Model) { m.List = list })
	c.logger.DebugContext(ctx, "Expense list refreshed", log.FieldCount, len(items))
	return nil
}

// RefreshSummary fetches the totals and then the whole collection again to
// count it. The three displayed numbers change together or not at all.
func (c *Controller) RefreshSummary(ctx context.Context) error {
	if err := c.refreshSummary(ctx); err != nil {
		c.notifier.Show(notify.Error, MsgLoadSummaryError)
		return err
	}
	return nil
}

func (c *Controller) refreshSummary(ctx context.Context) error {
	s, err := c.api.GetSummary(ctx)
	if err != nil {
		return c.summaryFailed(ctx, err)
	}
	items, err := c.api.ListExpenses(ctx)
	if err != nil {
		return c.summaryFailed(ctx, err)
	}
	summary := view.NewSummaryView(s, len(items))
	c.swap(func(m *view.Model) { m.Summary = summary })
	return nil
}

func (c *Controller) summaryFailed(ctx context.Context, err error) error {
	c.logger.ErrorContext(ctx, "Failed to load summary", log.FieldOperation, log.OpSummary, log.FieldError, err)
	return fmt.Errorf("refresh summary: %w", err)
}

// DeleteExpense asks confirmer first. A declined or missing confirmation
// sends nothing and reports false.
func (c *Controller) DeleteExpense(ctx context.Context, id int64, confirmer Confirmer) (bool, error) {
	if confirmer == nil || !confirmer.Confirm(ctx, DeletePrompt) {
		c.logger.DebugContext(ctx, "Delete not confirmed", log.FieldExpenseID, id)
		return false, nil
	}

	if err := c.api.DeleteExpense(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "Failed to delete expense",
			log.FieldOperation, log.OpDelete,
			log.FieldExpenseID, id,
			log.FieldError, err)
		c.notifier.Show(notify.Error, failureMessage(err, MsgDeleteFailed, MsgDeleteError))
		return true, fmt.Errorf("delete expense %d: %w", id, err)
	}

	c.logger.InfoContext(ctx, "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)
	_ = c.refreshAll(ctx)
	c.notifier.Show(notify.Success, MsgExpenseDeleted)
	return true, nil
}

// failureMessage picks the wording for a non-2xx answer versus anything else
// (network, decode).
func failureMessage(err error, rejected, broken string) string {
	if errors.Is(err, api.ErrRequestFailed) {
		return rejected
	}
	return broken
}
