package assistant

import (
	"fmt"
	"strings"

	"vyapar/backend/internal/domain"
)

const extractionTemplate = `You are a bookkeeping assistant for small shop owners in India.

Read the message below and return ONLY a JSON object, no markdown and no commentary.

Message:
%q

intent is one of:
- "sale": the owner sold something (sold, sale, customer bought)
- "inventory_add": stock arrived (received, delivery, purchased stock)
- "expense": money spent running the shop (paid, expense, spent, bill)
- "query": a question about earnings, stock, expenses or sales

Keys, use null when the message does not say:
intent, item, quantity, selling_price (per unit), cost_price (per unit), customer,
gst_rate (percent), category, description, amount, payment_method

Examples:
"Sold 2 red kurtis to Mrs. Sharma for ₹1500 each" ->
{"intent":"sale","item":"red kurtis","quantity":2,"selling_price":1500,"cost_price":null,"customer":"Mrs. Sharma","gst_rate":null,"category":null,"description":null,"amount":null,"payment_method":null}
"Received delivery: 20 lipsticks, ₹150 each" ->
{"intent":"inventory_add","item":"lipsticks","quantity":20,"selling_price":null,"cost_price":150,"customer":null,"gst_rate":null,"category":null,"description":null,"amount":null,"payment_method":null}
"Paid electricity bill ₹5000" ->
{"intent":"expense","item":null,"quantity":null,"selling_price":null,"cost_price":null,"customer":null,"gst_rate":null,"category":"Utilities","description":"electricity bill","amount":5000,"payment_method":"Cash"}
"How much did I earn this week?" ->
{"intent":"query","item":null,"quantity":null,"selling_price":null,"cost_price":null,"customer":null,"gst_rate":null,"category":null,"description":null,"amount":null,"payment_method":null}`

func extractionPrompt(text string) string {
	return fmt.Sprintf(extractionTemplate, text)
}

func insightPrompt(question string, snap domain.Snapshot, currency string) string {
	var b strings.Builder
	b.WriteString("You are a friendly financial advisor for a small business owner in India.\n\n")
	fmt.Fprintf(&b, "Question: %q\n\n", question)
	b.WriteString(businessData(snap, currency))
	fmt.Fprintf(&b, "\nAnswer in 2 to 4 sentences using %s for money. ", currency)
	b.WriteString("Be encouraging. If profit is low or expenses are high, suggest a practical fix; if the numbers are good, say so.")
	return b.String()
}

func advicePrompt(snap domain.Snapshot, currency string) string {
	top := make([]string, 0, 3)
	for i, it := range snap.TopItems {
		if i == 3 {
			break
		}
		top = append(top, it.Item)
	}
	topText := "None yet"
	if len(top) > 0 {
		topText = strings.Join(top, ", ")
	}

	var b strings.Builder
	b.WriteString("You are a business consultant for small shops in India.\n\n")
	b.WriteString("Financial metrics:\n")
	b.WriteString(FinancialSummary(snap.Profit, currency))
	fmt.Fprintf(&b, "\n\nLow stock items: %d need restocking\n", len(snap.LowStock))
	fmt.Fprintf(&b, "Top selling items: %s\n\n", topText)
	b.WriteString("Give 3 specific recommendations the owner can act on this week, based on these numbers, ")
	b.WriteString("aimed at raising profit or cutting cost. Format them as a numbered list.")
	return b.String()
}

func businessData(snap domain.Snapshot, currency string) string {
	return fmt.Sprintf("Sales:\n%s\n\nInventory:\n%s\n\nExpenses:\n%s\n\nFinancials:\n%s\n",
		SalesSummaryText(snap.Sales, currency),
		InventorySummaryText(snap.Inventory),
		ExpenseSummaryText(snap.Expenses, currency),
		FinancialSummary(snap.Profit, currency),
	)
}
