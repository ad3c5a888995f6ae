package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapar/backend/internal/store"
	"vyapar/backend/internal/store/storetest"
)

func TestStoreBehaviour(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}

func TestUpdateCellPastLastRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, store.Inventory, []string{"Lipstick", "20", "150"}))

	assert.ErrorIs(t, s.UpdateCell(ctx, store.Inventory, 1, store.InventoryStock, "1"), store.ErrRowOutOfRange)
}

func TestHeaderOnlyGridScansEmpty(t *testing.T) {
	s := NewWithValues(map[store.Table][][]string{
		store.Sales: {store.Headers(store.Sales)},
	})
	rows, err := s.Scan(context.Background(), store.Sales)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewSeededHasDemoRows(t *testing.T) {
	s := NewSeeded()
	rows, err := s.Scan(context.Background(), store.Inventory)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
	assert.Equal(t, store.Headers(store.Inventory), s.Values(store.Inventory)[0])
}
