package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnknownTable     = errors.New("unknown table")
	ErrRowOutOfRange    = errors.New("row index out of range")
	ErrColumnOutOfRange = errors.New("column index out of range")
)

type Table string

const (
	Sales     Table = "Sales"
	Inventory Table = "Inventory"
	Expenses  Table = "Expenses"
	Customers Table = "Customers"
)

var Tables = []Table{Sales, Inventory, Expenses, Customers}

// Column positions, 0-based, in header order.
const (
	SaleDate = iota
	SaleItem
	SaleQuantity
	SaleCostPrice
	SaleSellingPrice
	SaleCustomer
	SaleGSTRate
)

const (
	InventoryItem = iota
	InventoryStock
	InventoryCostPrice
)

const (
	ExpenseDate = iota
	ExpenseCategory
	ExpenseDescription
	ExpenseAmount
	ExpensePaymentMethod
)

const (
	CustomerName = iota
	CustomerPhone
	CustomerEmail
	CustomerAddress
)

var headers = map[Table][]string{
	Sales:     {"Date", "Item", "Quantity", "Cost Price", "Selling Price", "Customer", "GST Rate"},
	Inventory: {"Item", "Stock", "Cost Price"},
	Expenses:  {"Date", "Category", "Description", "Amount", "Payment Method"},
	Customers: {"Name", "Phone", "Email", "Address"},
}

// numeric marks the columns holding numbers; everything else is text.
var numeric = map[Table]map[int]bool{
	Sales:     {SaleQuantity: true, SaleCostPrice: true, SaleSellingPrice: true, SaleGSTRate: true},
	Inventory: {InventoryStock: true, InventoryCostPrice: true},
	Expenses:  {ExpenseAmount: true},
}

// NumericColumn reports whether column of t holds a number.
func NumericColumn(t Table, column int) bool {
	return numeric[t][column]
}

// Headers returns a copy of the header row for t, or nil for an unknown table.
func Headers(t Table) []string {
	h, ok := headers[t]
	if !ok {
		return nil
	}
	return append([]string(nil), h...)
}

func (t Table) Valid() bool {
	_, ok := headers[t]
	return ok
}

// ParseTable matches a table name case-insensitively.
func ParseTable(name string) (Table, error) {
	for _, t := range Tables {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return "", ErrUnknownTable
}

// Row is one data row. Index is its 0-based position below the header row.
type Row struct {
	Index  int
	Fields map[string]string
}

func (r Row) Get(header string) string {
	return r.Fields[header]
}

// Store is a positional, append-mostly table store. Implementations hold no read cache:
// every call goes to the backend, so a Scan after a write observes that write.
type Store interface {
	Append(ctx context.Context, table Table, values []string) error
	Scan(ctx context.Context, table Table) ([]Row, error)
	UpdateCell(ctx context.Context, table Table, rowIndex int, column int, value string) error
}

// ColumnLetter converts a 0-based column index to A1 notation letters.
func ColumnLetter(col int) string {
	if col < 0 {
		return ""
	}
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// RowsFromValues maps a physical grid whose first row is the header into data rows.
// Fewer than two physical rows yields no data. Short rows are padded with empty cells.
func RowsFromValues(values [][]string) []Row {
	if len(values) < 2 {
		return nil
	}
	header := values[0]
	rows := make([]Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		fields := make(map[string]string, len(header))
		for c, name := range header {
			if c < len(raw) {
				fields[name] = raw[c]
			} else {
				fields[name] = ""
			}
		}
		rows = append(rows, Row{Index: i, Fields: fields})
	}
	return rows
}

// CheckCell validates a row/column pair against the table's schema and data row count.
func CheckCell(table Table, rowIndex, column, dataRows int) error {
	h, ok := headers[table]
	if !ok {
		return ErrUnknownTable
	}
	if column < 0 || column >= len(h) {
		return ErrColumnOutOfRange
	}
	if rowIndex < 0 || rowIndex >= dataRows {
		return ErrRowOutOfRange
	}
	return nil
}
