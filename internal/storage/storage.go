// Package storage persists expenses for the reference API server.
//
// Implementations: the in-memory store (storage/memory), SQLite and
// Postgres. All of them list expenses newest date first.
package storage

import (
	"context"
	"errors"

	"expensetracker/internal/core"
)

// ErrNotFound is returned when an id does not exist.
var ErrNotFound = errors.New("expense not found")

type Repository interface {
	Create(ctx context.Context, e core.Expense) (core.Expense, error)
	List(ctx context.Context) ([]core.Expense, error)
	Update(ctx context.Context, id int64, e core.Expense) (core.Expense, error)
	// Delete is idempotent: removing a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	Close() error
}
