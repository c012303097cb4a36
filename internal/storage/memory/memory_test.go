package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository { return New() })
}

func TestNewWithExpensesIgnoresSeedIDs(t *testing.T) {
	s := NewWithExpenses(
		core.Expense{ID: 40, Title: "a", Date: core.NewDate(2024, 1, 1)},
		core.Expense{ID: 40, Title: "b", Date: core.NewDate(2024, 1, 1)},
	)
	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID, "same date: newest id first")
	assert.Equal(t, int64(1), items[1].ID)
}
