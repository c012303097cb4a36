// Package services holds the reference backend's application logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// Publisher announces committed changes. *amqp.Client satisfies it.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseUpdated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, id int64) error
	Close() error
}

// ExpenseService orchestrates expense operations across storage and AMQP.
type ExpenseService struct {
	storage   storage.Repository
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*ExpenseService)

// WithPublisher enables event publishing. A nil publisher disables it.
func WithPublisher(p Publisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentAPI)
		}
	}
}

// WithClock overrides the clock used to pick the current month for summaries.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(repo storage.Repository, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		storage: repo,
		logger:  log.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateExpense saves an expense and publishes expense.created.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	saved, err := s.storage.Create(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseCreated(ctx, saved); err != nil {
			s.logPublishFailure(ctx, saved.ID, err)
		}
	}
	return saved, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense replaces the stored expense. A missing id yields an error
// matching storage.ErrNotFound.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.storage.Update(ctx, id, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseUpdated(ctx, updated); err != nil {
			s.logPublishFailure(ctx, id, err)
		}
	}
	return updated, nil
}

// DeleteExpense removes an expense. Deleting a missing id is not an error.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseDeleted(ctx, id); err != nil {
			s.logPublishFailure(ctx, id, err)
		}
	}
	return nil
}

// Summary totals every stored expense; Monthly covers the current calendar month.
func (s *ExpenseService) Summary(ctx context.Context) (core.Summary, error) {
	expenses, err := s.storage.List(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load expenses for summary: %w", err)
	}
	return core.Summarize(expenses, core.DateOf(s.now()).MonthKey()), nil
}

// Ping reports whether storage answers a read.
func (s *ExpenseService) Ping(ctx context.Context) error {
	_, err := s.storage.List(ctx)
	return err
}

func (s *ExpenseService) logPublishFailure(ctx context.Context, id int64, err error) {
	// The change is committed; a lost event is logged, never surfaced.
	s.logger.ErrorContext(ctx, "Failed to publish expense event",
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpPublish,
		log.FieldError, err)
}

// Close closes both storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close expense service: %w", err)
	}
	return nil
}
