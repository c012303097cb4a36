// Package memory is an in-process expense store. It is the default backend
// for local development and tests; data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]core.Expense
}

func New() *Store {
	return &Store{nextID: 1, items: make(map[int64]core.Expense)}
}

// NewWithExpenses seeds the store. Ids on the seed are ignored.
func NewWithExpenses(seed ...core.Expense) *Store {
	s := New()
	for _, e := range seed {
		_, _ = s.Create(context.Background(), e)
	}
	return s
}

func (s *Store) Create(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.items[e.ID] = e
	return e, nil
}

// List returns expenses newest date first, ties broken by newest id.
func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Update(_ context.Context, id int64, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return core.Expense{}, storage.ErrNotFound
	}
	e.ID = id
	s.items[id] = e
	return e, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Store) Close() error { return nil }

var _ storage.Repository = (*Store)(nil)
