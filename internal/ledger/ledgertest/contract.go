// Package ledgertest holds the behaviour every ledger.Store must share.
package ledgertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/core"
	"vslim/internal/ledger"
)

func money(m core.Money) *core.Money { return &m }
func date(y, m, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func seed() []core.Expense {
	return []core.Expense{
		{UserID: "u1", Description: "Bánh mì ở quận 1", Amount: 25000, Category: "Ăn uống", PaidAt: core.NewDate(2025, 6, 1)},
		{UserID: "u1", Description: "Đổ xăng", Amount: 50000, Category: "Di chuyển", PaidAt: core.NewDate(2025, 6, 2)},
		{UserID: "u1", Description: "Phở", Amount: 45000, Category: "Ăn uống", PaidAt: core.NewDate(2025, 6, 3)},
		{UserID: "u2", Description: "Phở", Amount: 45000, Category: "Ăn uống", PaidAt: core.NewDate(2025, 6, 3)},
	}
}

// Run exercises a store opened fresh for each subtest.
func Run(t *testing.T, open func(t *testing.T) ledger.Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := open(t)
		res, err := s.Create(ctx, seed())
		require.NoError(t, err)
		assert.Equal(t, 4, res.InsertedCount)
		require.Len(t, res.InsertedIDs, 4)

		got, err := s.Get(ctx, res.InsertedIDs[0])
		require.NoError(t, err)
		assert.Equal(t, "Bánh mì ở quận 1", got.Description)
		assert.Equal(t, core.Money(25000), got.Amount)
		assert.Equal(t, core.EntryExpense, got.Type)
		assert.True(t, got.PaidAt.Equal(core.NewDate(2025, 6, 1)))
		assert.False(t, got.CreatedAt.IsZero())

		_, err = s.Get(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrExpenseNotFound)
	})

	t.Run("create validates", func(t *testing.T) {
		s := open(t)
		_, err := s.Create(ctx, []core.Expense{{UserID: "u1", Amount: 1, PaidAt: core.NewDate(2025, 1, 1)}})
		assert.ErrorIs(t, err, core.ErrEmptyDescription)
	})

	t.Run("find", func(t *testing.T) {
		s := open(t)
		_, err := s.Create(ctx, seed())
		require.NoError(t, err)

		tests := []struct {
			name string
			c    core.Criteria
			want []string
		}{
			{"by user", core.Criteria{UserID: "u1"}, []string{"Bánh mì ở quận 1", "Đổ xăng", "Phở"}},
			{"description is case insensitive", core.Criteria{UserID: "u1", Description: "phở"}, []string{"Phở"}},
			{"location in description", core.Criteria{UserID: "u1", Location: "Quận 1"}, []string{"Bánh mì ở quận 1"}},
			{"amount", core.Criteria{UserID: "u1", Amount: money(50000)}, []string{"Đổ xăng"}},
			{"date range", core.Criteria{UserID: "u1", From: date(2025, 6, 2), To: date(2025, 6, 3)}, []string{"Đổ xăng", "Phở"}},
			{"no match", core.Criteria{UserID: "u3"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				found, err := s.Find(ctx, tt.c)
				require.NoError(t, err)
				var got []string
				for _, e := range found {
					got = append(got, e.Description)
				}
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		s := open(t)
		res, err := s.Create(ctx, seed()[:2])
		require.NoError(t, err)

		e, err := s.Get(ctx, res.InsertedIDs[0])
		require.NoError(t, err)
		unchanged, err := s.Get(ctx, res.InsertedIDs[1])
		require.NoError(t, err)

		e.Amount = 30000
		e.PaidAt = core.NewDate(2025, 6, 5)
		up, err := s.Update(ctx, []core.Expense{e, unchanged, {ID: "missing", UserID: "u1", Description: "x", PaidAt: core.NewDate(2025, 1, 1)}})
		require.NoError(t, err)
		assert.Equal(t, core.UpdateResult{MatchedCount: 2, ModifiedCount: 1}, up)

		got, err := s.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, core.Money(30000), got.Amount)
		assert.True(t, got.PaidAt.Equal(core.NewDate(2025, 6, 5)))
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		res, err := s.Create(ctx, seed())
		require.NoError(t, err)

		del, err := s.Delete(ctx, []string{res.InsertedIDs[0], res.InsertedIDs[1], "missing"})
		require.NoError(t, err)
		assert.Equal(t, 2, del.DeletedCount)

		found, err := s.Find(ctx, core.Criteria{UserID: "u1"})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("statistics", func(t *testing.T) {
		s := open(t)
		_, err := s.Create(ctx, seed())
		require.NoError(t, err)

		stats, err := s.Statistics(ctx, core.Criteria{UserID: "u1", From: date(2025, 6, 1), To: date(2025, 6, 3)})
		require.NoError(t, err)
		assert.Equal(t, map[string]core.CategoryStat{
			"Ăn uống":   {TotalAmount: 70000, Count: 2},
			"Di chuyển": {TotalAmount: 50000, Count: 1},
		}, stats)

		stats, err = s.Statistics(ctx, core.Criteria{UserID: "u1", From: date(2024, 1, 1), To: date(2024, 1, 31)})
		require.NoError(t, err)
		assert.Empty(t, stats)
	})
}
