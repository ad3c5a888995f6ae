package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type IntentKind string

const (
	IntentSale         IntentKind = "sale"
	IntentInventoryAdd IntentKind = "inventory_add"
	IntentExpense      IntentKind = "expense"
	IntentQuery        IntentKind = "query"
)

// Intent is one of SaleIntent, InventoryAddIntent, ExpenseIntent or QueryIntent.
type Intent interface {
	Kind() IntentKind
}

type SaleIntent struct {
	Item         string          `json:"item" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0,whole"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gt=0"`
	CostPrice    decimal.Decimal `json:"cost_price" validate:"gte=0"`
	Customer     string          `json:"customer"`
	GSTRate      decimal.Decimal `json:"gst_rate" validate:"gte=0,lte=100"`
}

func (SaleIntent) Kind() IntentKind { return IntentSale }

type InventoryAddIntent struct {
	Item      string          `json:"item" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"gte=0"`
}

func (InventoryAddIntent) Kind() IntentKind { return IntentInventoryAdd }

type ExpenseIntent struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Description   string          `json:"description" validate:"required"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
}

func (ExpenseIntent) Kind() IntentKind { return IntentExpense }

type QueryIntent struct {
	Question string `json:"question"`
}

func (QueryIntent) Kind() IntentKind { return IntentQuery }

// Extraction is the loosely typed object returned by an extractor. Any field may be absent or null.
type Extraction struct {
	Intent        string              `json:"intent"`
	Item          string              `json:"item"`
	Quantity      decimal.NullDecimal `json:"quantity"`
	SellingPrice  decimal.NullDecimal `json:"selling_price"`
	CostPrice     decimal.NullDecimal `json:"cost_price"`
	Customer      string              `json:"customer"`
	GSTRate       decimal.NullDecimal `json:"gst_rate"`
	Category      string              `json:"category"`
	Description   string              `json:"description"`
	Amount        decimal.NullDecimal `json:"amount"`
	PaymentMethod string              `json:"payment_method"`
}

type IntentDefaults struct {
	GSTRate       decimal.Decimal
	PaymentMethod string
}

const DefaultPaymentMethod = "Cash"

// ToIntent narrows the extraction to its intent variant and validates it. No defaults are
// applied to fields that fail validation, so an invalid extraction never reaches a write.
func (e Extraction) ToIntent(defaults IntentDefaults) (Intent, error) {
	switch IntentKind(strings.ToLower(strings.TrimSpace(e.Intent))) {
	case IntentSale:
		gst := defaults.GSTRate
		if e.GSTRate.Valid {
			gst = e.GSTRate.Decimal
		}
		return SaleRequest{
			Item:         e.Item,
			Quantity:     e.Quantity.Decimal,
			SellingPrice: e.SellingPrice.Decimal,
			CostPrice:    e.CostPrice.Decimal,
			Customer:     e.Customer,
			GSTRate:      decimal.NewNullDecimal(gst),
		}.ToIntent(defaults)
	case IntentInventoryAdd:
		return InventoryRequest{
			Item:      e.Item,
			Quantity:  e.Quantity.Decimal,
			CostPrice: e.CostPrice.Decimal,
		}.ToIntent()
	case IntentExpense:
		return ExpenseRequest{
			Category:      e.Category,
			Description:   e.Description,
			Amount:        e.Amount.Decimal,
			PaymentMethod: e.PaymentMethod,
		}.ToIntent(defaults)
	case IntentQuery:
		return QueryIntent{}, nil
	default:
		return nil, &ValidationError{Message: "Could not understand your input. Please try again."}
	}
}

func (r SaleRequest) ToIntent(defaults IntentDefaults) (SaleIntent, error) {
	in := SaleIntent{
		Item:         strings.TrimSpace(r.Item),
		Quantity:     r.Quantity,
		SellingPrice: r.SellingPrice,
		CostPrice:    r.CostPrice,
		Customer:     strings.TrimSpace(r.Customer),
		GSTRate:      defaults.GSTRate,
	}
	if r.GSTRate.Valid {
		in.GSTRate = r.GSTRate.Decimal
	}
	if err := Validate(in); err != nil {
		return SaleIntent{}, err
	}
	return in, nil
}

func (r InventoryRequest) ToIntent() (InventoryAddIntent, error) {
	in := InventoryAddIntent{
		Item:      strings.TrimSpace(r.Item),
		Quantity:  r.Quantity,
		CostPrice: r.CostPrice,
	}
	if err := Validate(in); err != nil {
		return InventoryAddIntent{}, err
	}
	return in, nil
}

func (r ExpenseRequest) ToIntent(defaults IntentDefaults) (ExpenseIntent, error) {
	in := ExpenseIntent{
		Amount:        r.Amount,
		Description:   strings.TrimSpace(r.Description),
		Category:      strings.TrimSpace(r.Category),
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
	}
	if err := Validate(in); err != nil {
		return ExpenseIntent{}, err
	}
	if in.Category == "" {
		in.Category = SuggestCategory(in.Description)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = defaults.PaymentMethod
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = DefaultPaymentMethod
	}
	return in, nil
}
