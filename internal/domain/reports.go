package domain

import "github.com/shopspring/decimal"

type ProfitSummary struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Cost     decimal.Decimal `json:"cost"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// MarginPercent is net profit as a percentage of revenue, zero without revenue.
func (p ProfitSummary) MarginPercent() decimal.Decimal {
	if !p.Revenue.IsPositive() {
		return decimal.Zero
	}
	return p.Profit.Div(p.Revenue).Mul(hundred).Round(1)
}

type Statement struct {
	Revenue           decimal.Decimal `json:"revenue"`
	COGS              decimal.Decimal `json:"cost_of_goods_sold"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	GrossMargin       decimal.Decimal `json:"gross_margin_percent"`
	NetMargin         decimal.Decimal `json:"net_margin_percent"`
}

func NewStatement(p ProfitSummary) Statement {
	gross := p.Revenue.Sub(p.Cost)
	st := Statement{
		Revenue:           p.Revenue,
		COGS:              p.Cost,
		GrossProfit:       gross,
		OperatingExpenses: p.Expenses,
		NetProfit:         p.Profit,
		NetMargin:         p.MarginPercent(),
	}
	if p.Revenue.IsPositive() {
		st.GrossMargin = gross.Div(p.Revenue).Mul(hundred).Round(1)
	}
	return st
}

type ItemCount struct {
	Item  string `json:"item"`
	Sales int    `json:"sales"`
}

type CustomerTotal struct {
	Customer string          `json:"customer"`
	Total    decimal.Decimal `json:"total"`
}

type DailyTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type SalesSummary struct {
	Count       int             `json:"count"`
	Revenue     decimal.Decimal `json:"revenue"`
	AverageSale decimal.Decimal `json:"average_sale"`
	TopItem     string          `json:"top_item,omitempty"`
}

type InventorySummary struct {
	Items      int             `json:"items"`
	TotalUnits decimal.Decimal `json:"total_units"`
	LowStock   int             `json:"low_stock"`
}

type ExpenseSummary struct {
	Count       int              `json:"count"`
	Total       decimal.Decimal  `json:"total"`
	Average     decimal.Decimal  `json:"average"`
	TopCategory string           `json:"top_category,omitempty"`
	ByCategory  []CategoryAmount `json:"by_category"`
}

// Snapshot is everything the dashboard and advisor read, derived from one scan per table.
type Snapshot struct {
	Profit       ProfitSummary     `json:"profit"`
	Sales        SalesSummary      `json:"sales"`
	Inventory    InventorySummary  `json:"inventory"`
	Expenses     ExpenseSummary    `json:"expenses"`
	LowStock     []InventoryRecord `json:"low_stock"`
	TopItems     []ItemCount       `json:"top_items"`
	TopCustomers []CustomerTotal   `json:"top_customers"`
	DailySales   []DailyTotal      `json:"daily_sales"`
}

type Dashboard struct {
	Currency      string          `json:"currency"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Snapshot
}

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}
