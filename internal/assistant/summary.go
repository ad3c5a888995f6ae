package assistant

import (
	"fmt"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
)

func money(currency string, d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}

func SalesSummaryText(s domain.SalesSummary, currency string) string {
	if s.Count == 0 {
		return "No sales recorded yet."
	}
	text := fmt.Sprintf("Total sales: %d transactions, Revenue: %s, Avg sale: %s",
		s.Count, money(currency, s.Revenue), money(currency, s.AverageSale))
	if s.TopItem != "" {
		text += "\nTop selling item: " + s.TopItem
	}
	return text
}

func InventorySummaryText(s domain.InventorySummary) string {
	if s.Items == 0 {
		return "No inventory recorded yet."
	}
	text := fmt.Sprintf("Total inventory: %d different items, %s total units", s.Items, s.TotalUnits.StringFixed(0))
	if s.LowStock > 0 {
		text += fmt.Sprintf("\nWarning: %d items low on stock", s.LowStock)
	}
	return text
}

func ExpenseSummaryText(s domain.ExpenseSummary, currency string) string {
	if s.Count == 0 {
		return "No expenses recorded yet."
	}
	text := fmt.Sprintf("Total expenses: %d entries, Amount: %s, Avg: %s",
		s.Count, money(currency, s.Total), money(currency, s.Average))
	if s.TopCategory != "" {
		text += "\nHighest expense category: " + s.TopCategory
	}
	return text
}

func FinancialSummary(p domain.ProfitSummary, currency string) string {
	text := fmt.Sprintf("Revenue: %s\nCost of Goods: %s\nOperating Expenses: %s\nNet Profit: %s",
		money(currency, p.Revenue), money(currency, p.Cost), money(currency, p.Expenses), money(currency, p.Profit))
	if p.Revenue.IsPositive() {
		text += fmt.Sprintf("\nProfit Margin: %s%%", p.MarginPercent().StringFixed(1))
	}
	return text
}
