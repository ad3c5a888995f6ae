package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
)

// SummaryAdvisor answers from the snapshot alone, for deployments without a model key.
type SummaryAdvisor struct {
	currency string
}

func NewSummaryAdvisor(currency string) *SummaryAdvisor {
	return &SummaryAdvisor{currency: currency}
}

func (a *SummaryAdvisor) Insight(_ context.Context, question string, snap domain.Snapshot) string {
	q := strings.ToLower(question)
	p := snap.Profit
	switch {
	case strings.Contains(q, "stock") || strings.Contains(q, "inventory"):
		if len(snap.LowStock) == 0 {
			return InventorySummaryText(snap.Inventory) + ". Nothing is running low right now."
		}
		names := make([]string, 0, len(snap.LowStock))
		for _, it := range snap.LowStock {
			names = append(names, it.Item)
		}
		return fmt.Sprintf("%d items are low on stock: %s. Consider restocking them soon.", len(names), strings.Join(names, ", "))
	case strings.Contains(q, "expense") || strings.Contains(q, "spend") || strings.Contains(q, "spent"):
		return strings.ReplaceAll(ExpenseSummaryText(snap.Expenses, a.currency), "\n", ". ") + "."
	case strings.Contains(q, "customer"):
		if len(snap.TopCustomers) == 0 {
			return "No named customers yet."
		}
		c := snap.TopCustomers[0]
		return fmt.Sprintf("Your best customer is %s with %s in purchases.", c.Customer, money(a.currency, c.Total))
	}

	text := fmt.Sprintf("Revenue so far is %s and net profit is %s", money(a.currency, p.Revenue), money(a.currency, p.Profit))
	if p.Revenue.IsPositive() {
		text += fmt.Sprintf(" (%s%% margin)", p.MarginPercent().StringFixed(1))
	}
	text += "."
	if p.Profit.IsNegative() {
		text += " Expenses and cost of goods are above revenue; review your largest expense category."
	} else if p.Revenue.IsPositive() {
		text += " Keep it up."
	}
	return text
}

func (a *SummaryAdvisor) Advice(_ context.Context, snap domain.Snapshot) string {
	tips := make([]string, 0, 3)
	if n := len(snap.LowStock); n > 0 {
		tips = append(tips, fmt.Sprintf("Restock the %d low-stock items before they run out, starting with %s.", n, snap.LowStock[0].Item))
	}
	if len(snap.TopItems) > 0 {
		tips = append(tips, fmt.Sprintf("Feature %s prominently; it is your best seller.", snap.TopItems[0].Item))
	}
	margin := snap.Profit.MarginPercent()
	if snap.Profit.Revenue.IsPositive() && margin.LessThan(decimal.NewFromInt(10)) {
		tips = append(tips, fmt.Sprintf("Your margin is %s%%; review prices or supplier costs.", margin.StringFixed(1)))
	}
	if snap.Expenses.TopCategory != "" {
		tips = append(tips, fmt.Sprintf("Look for savings in %s, your largest expense category.", snap.Expenses.TopCategory))
	}
	if len(snap.TopCustomers) > 0 {
		tips = append(tips, fmt.Sprintf("Thank %s with a loyalty offer to keep repeat business.", snap.TopCustomers[0].Customer))
	}
	tips = append(tips, "Record every sale with its cost price so profit figures stay accurate.")

	if len(tips) > 3 {
		tips = tips[:3]
	}
	var b strings.Builder
	for i, t := range tips {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, t)
	}
	return b.String()
}
