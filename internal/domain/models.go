package domain

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SaleRecord is one row of the Sales table. GST and total are derived and never stored.
type SaleRecord struct {
	Date         string          `json:"date"`
	Item         string          `json:"item"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Customer     string          `json:"customer,omitempty"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
}

func (s SaleRecord) Subtotal() decimal.Decimal {
	return s.SellingPrice.Mul(s.Quantity)
}

func (s SaleRecord) GSTAmount() decimal.Decimal {
	return s.Subtotal().Mul(s.GSTRate).Div(hundred)
}

func (s SaleRecord) TotalAmount() decimal.Decimal {
	return s.Subtotal().Add(s.GSTAmount())
}

// HasCost reports whether a cost price was captured for the sale.
func (s SaleRecord) HasCost() bool {
	return !s.CostPrice.IsZero()
}

// COGS is zero for sales recorded without a cost price.
func (s SaleRecord) COGS() decimal.Decimal {
	if !s.HasCost() {
		return decimal.Zero
	}
	return s.CostPrice.Mul(s.Quantity)
}

type SaleLine struct {
	SaleRecord
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewSaleLine(s SaleRecord) SaleLine {
	return SaleLine{SaleRecord: s, GSTAmount: s.GSTAmount(), TotalAmount: s.TotalAmount()}
}

type InventoryRecord struct {
	Item      string          `json:"item"`
	Stock     decimal.Decimal `json:"stock"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

type ExpenseRecord struct {
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

type CustomerRecord struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type InventoryChange struct {
	Item     string          `json:"item"`
	OldStock decimal.Decimal `json:"old_stock"`
	NewStock decimal.Decimal `json:"new_stock"`
	Created  bool            `json:"created"`
}

type SaleRequest struct {
	Date         string              `json:"date"`
	Item         string              `json:"item"`
	Quantity     decimal.Decimal     `json:"quantity"`
	SellingPrice decimal.Decimal     `json:"selling_price"`
	CostPrice    decimal.Decimal     `json:"cost_price"`
	Customer     string              `json:"customer"`
	GSTRate      decimal.NullDecimal `json:"gst_rate"`
}

type InventoryRequest struct {
	Item      string          `json:"item"`
	Quantity  decimal.Decimal `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

type ExpenseRequest struct {
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

type SaleReceipt struct {
	Sale        SaleRecord       `json:"sale"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	GSTAmount   decimal.Decimal  `json:"gst_amount"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Profit      *decimal.Decimal `json:"profit,omitempty"`
	StockAfter  *decimal.Decimal `json:"stock_after,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

type SubmitResult struct {
	ID        string           `json:"id"`
	Intent    IntentKind       `json:"intent"`
	Sale      *SaleReceipt     `json:"sale,omitempty"`
	Inventory *InventoryChange `json:"inventory,omitempty"`
	Expense   *ExpenseRecord   `json:"expense,omitempty"`
	Answer    string           `json:"answer,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)
