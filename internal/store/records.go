package store

import (
	"strings"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
)

var numberNoise = strings.NewReplacer(",", "", " ", "", "₹", "", "$", "")

// ParseNumber coerces a cell to a number. Blank or unparseable cells read as zero.
func ParseNumber(cell string) decimal.Decimal {
	cleaned := numberNoise.Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func FormatNumber(d decimal.Decimal) string {
	return d.String()
}

// FormatOptional writes zero as a blank cell.
func FormatOptional(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func cell(r Row, table Table, column int) string {
	return strings.TrimSpace(r.Get(headers[table][column]))
}

func EncodeSale(s domain.SaleRecord) []string {
	return []string{
		s.Date,
		s.Item,
		FormatNumber(s.Quantity),
		FormatOptional(s.CostPrice),
		FormatNumber(s.SellingPrice),
		s.Customer,
		FormatNumber(s.GSTRate),
	}
}

func DecodeSale(r Row) domain.SaleRecord {
	return domain.SaleRecord{
		Date:         cell(r, Sales, SaleDate),
		Item:         cell(r, Sales, SaleItem),
		Quantity:     ParseNumber(cell(r, Sales, SaleQuantity)),
		CostPrice:    ParseNumber(cell(r, Sales, SaleCostPrice)),
		SellingPrice: ParseNumber(cell(r, Sales, SaleSellingPrice)),
		Customer:     cell(r, Sales, SaleCustomer),
		GSTRate:      ParseNumber(cell(r, Sales, SaleGSTRate)),
	}
}

func EncodeInventory(in domain.InventoryRecord) []string {
	return []string{in.Item, FormatNumber(in.Stock), FormatOptional(in.CostPrice)}
}

func DecodeInventory(r Row) domain.InventoryRecord {
	return domain.InventoryRecord{
		Item:      cell(r, Inventory, InventoryItem),
		Stock:     ParseNumber(cell(r, Inventory, InventoryStock)),
		CostPrice: ParseNumber(cell(r, Inventory, InventoryCostPrice)),
	}
}

func EncodeExpense(e domain.ExpenseRecord) []string {
	return []string{e.Date, e.Category, e.Description, FormatNumber(e.Amount), e.PaymentMethod}
}

func DecodeExpense(r Row) domain.ExpenseRecord {
	return domain.ExpenseRecord{
		Date:          cell(r, Expenses, ExpenseDate),
		Category:      cell(r, Expenses, ExpenseCategory),
		Description:   cell(r, Expenses, ExpenseDescription),
		Amount:        ParseNumber(cell(r, Expenses, ExpenseAmount)),
		PaymentMethod: cell(r, Expenses, ExpensePaymentMethod),
	}
}

func EncodeCustomer(c domain.CustomerRecord) []string {
	return []string{c.Name, c.Phone, c.Email, c.Address}
}

func DecodeCustomer(r Row) domain.CustomerRecord {
	return domain.CustomerRecord{
		Name:    cell(r, Customers, CustomerName),
		Phone:   cell(r, Customers, CustomerPhone),
		Email:   cell(r, Customers, CustomerEmail),
		Address: cell(r, Customers, CustomerAddress),
	}
}

func DecodeAll[T any](rows []Row, decode func(Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, decode(r))
	}
	return out
}
