package gormdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapar/backend/internal/store"
	"vyapar/backend/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreBehaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestUpdateCellPastLastRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, store.Inventory, []string{"Lipstick", "20", "150"}))

	assert.ErrorIs(t, s.UpdateCell(ctx, store.Inventory, 1, store.InventoryStock, "1"), store.ErrRowOutOfRange)
}

func TestTablesAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, store.Inventory, []string{"Lipstick", "20", "150"}))

	rows, err := s.Scan(ctx, store.Customers)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMySQLStoreBehaviour(t *testing.T) {
	dsn := os.Getenv("VYAPAR_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("VYAPAR_TEST_MYSQL_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := NewMySQL(dsn)
		require.NoError(t, err)
		require.NoError(t, s.db.Exec("DELETE FROM ledger_rows").Error)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
