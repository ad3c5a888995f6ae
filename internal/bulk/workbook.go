package bulk

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/store"
)

// ReadWorkbook builds a catalog from an xlsx file with one sheet per table, named like
// the ledger tables and headed with the same column names. Other sheets are ignored and
// a missing GST rate falls back to the configured default.
func ReadWorkbook(r io.Reader) (Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Catalog{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cat Catalog
	for _, name := range f.GetSheetList() {
		table, err := store.ParseTable(name)
		if err != nil {
			continue
		}
		grid, err := f.GetRows(name)
		if err != nil {
			return Catalog{}, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(grid) > 0 {
			for i := range grid[0] {
				grid[0][i] = strings.TrimSpace(grid[0][i])
			}
		}
		rows := store.RowsFromValues(grid)

		switch table {
		case store.Inventory:
			for _, rec := range store.DecodeAll(rows, store.DecodeInventory) {
				if rec.Item == "" {
					continue
				}
				cat.Inventory = append(cat.Inventory, domain.InventoryRequest{Item: rec.Item, Quantity: rec.Stock, CostPrice: rec.CostPrice})
			}
		case store.Customers:
			for _, rec := range store.DecodeAll(rows, store.DecodeCustomer) {
				if rec.Name == "" {
					continue
				}
				cat.Customers = append(cat.Customers, domain.CustomerRequest(rec))
			}
		case store.Expenses:
			for _, rec := range store.DecodeAll(rows, store.DecodeExpense) {
				if rec.Description == "" && rec.Amount.IsZero() {
					continue
				}
				cat.Expenses = append(cat.Expenses, domain.ExpenseRequest(rec))
			}
		case store.Sales:
			gstHeader := store.Headers(store.Sales)[store.SaleGSTRate]
			for _, row := range rows {
				rec := store.DecodeSale(row)
				if rec.Item == "" {
					continue
				}
				req := domain.SaleRequest{
					Date:         rec.Date,
					Item:         rec.Item,
					Quantity:     rec.Quantity,
					SellingPrice: rec.SellingPrice,
					CostPrice:    rec.CostPrice,
					Customer:     rec.Customer,
				}
				if strings.TrimSpace(row.Get(gstHeader)) != "" {
					req.GSTRate = decimal.NewNullDecimal(rec.GSTRate)
				}
				cat.Sales = append(cat.Sales, req)
			}
		}
	}
	return cat, nil
}
