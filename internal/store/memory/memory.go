package memory

import (
	"context"
	"sync"

	"vyapar/backend/internal/store"
)

// Store keeps each table as a physical grid whose first row is the header.
type Store struct {
	mu     sync.RWMutex
	tables map[store.Table][][]string
}

func New() *Store {
	tables := make(map[store.Table][][]string, len(store.Tables))
	for _, t := range store.Tables {
		tables[t] = [][]string{store.Headers(t)}
	}
	return &Store{tables: tables}
}

// NewSeeded returns a store holding a small demo shop.
func NewSeeded() *Store {
	s := New()
	s.tables[store.Inventory] = append(s.tables[store.Inventory],
		[]string{"Cotton Kurti", "25", "450"},
		[]string{"Silk Saree", "8", "2200"},
		[]string{"Lipstick", "3", "150"},
		[]string{"Face Cream", "12", "180"},
	)
	s.tables[store.Customers] = append(s.tables[store.Customers],
		[]string{"Mrs. Sharma", "+919876543210", "sharma@example.com", "Andheri, Mumbai"},
		[]string{"Priya Patel", "+919876543211", "", "Bandra, Mumbai"},
	)
	s.tables[store.Sales] = append(s.tables[store.Sales],
		[]string{"2025-01-02", "Cotton Kurti", "2", "450", "899", "Mrs. Sharma", "5"},
		[]string{"2025-01-03", "Lipstick", "3", "150", "299", "Priya Patel", "18"},
	)
	s.tables[store.Expenses] = append(s.tables[store.Expenses],
		[]string{"2025-01-01", "Rent", "Shop rent", "15000", "Bank Transfer"},
	)
	return s
}

// NewWithValues builds a store from raw grids, header row included. Missing tables start empty.
func NewWithValues(values map[store.Table][][]string) *Store {
	s := New()
	for t, grid := range values {
		cp := make([][]string, 0, len(grid))
		for _, row := range grid {
			cp = append(cp, append([]string(nil), row...))
		}
		s.tables[t] = cp
	}
	return s
}

func (s *Store) Append(_ context.Context, table store.Table, values []string) error {
	if !table.Valid() {
		return store.ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], append([]string(nil), values...))
	return nil
}

func (s *Store) Scan(_ context.Context, table store.Table) ([]store.Row, error) {
	if !table.Valid() {
		return nil, store.ErrUnknownTable
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.RowsFromValues(s.tables[table]), nil
}

func (s *Store) UpdateCell(_ context.Context, table store.Table, rowIndex int, column int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid := s.tables[table]
	if err := store.CheckCell(table, rowIndex, column, len(grid)-1); err != nil {
		return err
	}
	row := grid[rowIndex+1]
	for len(row) <= column {
		row = append(row, "")
	}
	row[column] = value
	grid[rowIndex+1] = row
	return nil
}

// Values returns a copy of the physical grid, header included.
func (s *Store) Values(table store.Table) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]string, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		out = append(out, append([]string(nil), row...))
	}
	return out
}
