// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapar/backend/internal/store"
)

// Run exercises a backend. newStore must return an empty store with header rows in place.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("ScanEmptyTable", func(t *testing.T) {
		s := newStore(t)
		for _, table := range store.Tables {
			rows, err := s.Scan(context.Background(), table)
			require.NoError(t, err)
			assert.Empty(t, rows, table)
		}
	})

	t.Run("AppendThenScanKeepsOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, store.Expenses, []string{"2025-01-01", "Rent", "Shop rent", "15000", "Bank Transfer"}))
		require.NoError(t, s.Append(ctx, store.Expenses, []string{"2025-01-02", "Utilities", "Electricity", "2500", "UPI"}))

		rows, err := s.Scan(ctx, store.Expenses)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 0, rows[0].Index)
		assert.Equal(t, "Shop rent", rows[0].Get("Description"))
		assert.Equal(t, 1, rows[1].Index)
		assert.Equal(t, "UPI", rows[1].Get("Payment Method"))
	})

	t.Run("ShortRowsArePadded", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, store.Customers, []string{"Mrs. Sharma"}))

		rows, err := s.Scan(ctx, store.Customers)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Get("Phone"))
		assert.Equal(t, "", rows[0].Get("Address"))
	})

	t.Run("UpdateCellIsVisibleToNextScan", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, store.Inventory, []string{"Lipstick", "20", "150"}))
		require.NoError(t, s.Append(ctx, store.Inventory, []string{"Kurti", "4", ""}))

		require.NoError(t, s.UpdateCell(ctx, store.Inventory, 1, store.InventoryCostPrice, "450"))

		rows, err := s.Scan(ctx, store.Inventory)
		require.NoError(t, err)
		assert.Equal(t, "450", rows[1].Get("Cost Price"))
		assert.Equal(t, "150", rows[0].Get("Cost Price"))
	})

	t.Run("UpdateCellOutOfRange", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, store.Inventory, []string{"Lipstick", "20", "150"}))

		assert.ErrorIs(t, s.UpdateCell(ctx, store.Inventory, -1, store.InventoryStock, "1"), store.ErrRowOutOfRange)
		assert.ErrorIs(t, s.UpdateCell(ctx, store.Inventory, 0, 3, "1"), store.ErrColumnOutOfRange)
	})

	t.Run("UnknownTable", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Scan(context.Background(), store.Table("Refunds"))
		assert.ErrorIs(t, err, store.ErrUnknownTable)
	})
}
