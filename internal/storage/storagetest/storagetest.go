// Package storagetest holds the behaviour every storage.Repository must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Run exercises create, list ordering, update and delete against a fresh
// repository returned by newRepo.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		repo := newRepo(t)
		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("create assigns ids and keeps values", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, core.Expense{
			Title:       "Coffee",
			Amount:      core.MoneyFromFloat(3.5),
			Category:    core.CategoryFood,
			Date:        core.NewDate(2024, 1, 15),
			Description: "oat milk",
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		got := items[0]
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Coffee", got.Title)
		assert.Equal(t, "$3.50", got.Amount.Format())
		assert.True(t, got.Amount.Equal(core.MoneyFromFloat(3.5).Decimal))
		assert.Equal(t, core.CategoryFood, got.Category)
		assert.Equal(t, "2024-01-15", got.Date.String())
		assert.Equal(t, "oat milk", got.Description)
	})

	t.Run("list is ordered by date desc", func(t *testing.T) {
		repo := newRepo(t)
		for _, e := range []core.Expense{
			{Title: "old", Amount: core.MoneyFromFloat(1), Category: core.CategoryOther, Date: core.NewDate(2023, 12, 31)},
			{Title: "new", Amount: core.MoneyFromFloat(2), Category: core.CategoryOther, Date: core.NewDate(2024, 2, 1)},
			{Title: "mid", Amount: core.MoneyFromFloat(3), Category: core.CategoryOther, Date: core.NewDate(2024, 1, 10)},
		} {
			_, err := repo.Create(ctx, e)
			require.NoError(t, err)
		}
		items, err := repo.List(ctx)
		require.NoError(t, err)
		var titles []string
		for _, e := range items {
			titles = append(titles, e.Title)
		}
		assert.Equal(t, []string{"new", "mid", "old"}, titles)
	})

	t.Run("update", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, core.Expense{Title: "Taxi", Amount: core.MoneyFromFloat(10), Category: core.CategoryTransport, Date: core.NewDate(2024, 3, 1)})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, core.Expense{Title: "Taxi home", Amount: core.MoneyFromFloat(12.25), Category: core.CategoryTransport, Date: core.NewDate(2024, 3, 2)})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Taxi home", items[0].Title)
		assert.Equal(t, "$12.25", items[0].Amount.Format())
		assert.Equal(t, "2024-03-02", items[0].Date.String())

		_, err = repo.Update(ctx, created.ID+100, core.Expense{Title: "x", Amount: core.MoneyFromFloat(1), Category: core.CategoryOther, Date: core.NewDate(2024, 3, 2)})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		a, err := repo.Create(ctx, core.Expense{Title: "a", Amount: core.MoneyFromFloat(1), Category: core.CategoryOther, Date: core.NewDate(2024, 1, 1)})
		require.NoError(t, err)
		b, err := repo.Create(ctx, core.Expense{Title: "b", Amount: core.MoneyFromFloat(2), Category: core.CategoryOther, Date: core.NewDate(2024, 1, 2)})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, a.ID))
		require.NoError(t, repo.Delete(ctx, a.ID))

		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, b.ID, items[0].ID)
	})
}
