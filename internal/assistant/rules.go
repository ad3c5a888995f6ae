package assistant

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
)

// RulesExtractor recognises the common phrasings with regular expressions. It is the
// extractor used when no model key is configured.
type RulesExtractor struct{}

func NewRulesExtractor() *RulesExtractor { return &RulesExtractor{} }

const number = `(\d[\d,]*(?:\.\d+)?)`

var (
	currencyPrefix = `(?:₹|rs\.?|inr)?\s*`
	moneyRe        = regexp.MustCompile(`(?i)(?:₹|\brs\.?|\binr)\s*` + number)
	bareNumberRe   = regexp.MustCompile(number)
	saleRe         = regexp.MustCompile(`(?i)\b(?:sold|sell|sale of)\s+` + number + `\s+(.+?)(?:\s+to\s+|\s+for\s+|\s+at\s+|\s*@|\s*,|\s*₹|$)`)
	customerRe     = regexp.MustCompile(`(?i)\bto\s+(.+?)(?:\s+for\b|\s+at\b|\s*@|\s*,|\s*₹|$)`)
	unitPriceRe    = regexp.MustCompile(`(?i)(?:\bfor\b|\bat\b|@)\s*` + currencyPrefix + number + `(\s*(?:each|per\s+\w+|/\s*(?:pc|piece|unit)))?`)
	gstRe          = regexp.MustCompile(`(?i)` + number + `\s*%\s*gst|gst\s*(?:@|of|at)?\s*` + number + `\s*%`)
	costRe         = regexp.MustCompile(`(?i)\bcost(?:\s*price)?\s*(?:of|is|:)?\s*` + currencyPrefix + number)
	stockRe        = regexp.MustCompile(`(?i)` + number + `\s+([^,@₹:]+?)(?:\s*,|\s+at\b|\s+for\b|\s*@|\s*₹|\s+cost\b|$)`)
	expenseVerbRe  = regexp.MustCompile(`(?i)^\s*(?:paid|spent|expense(?:\s+of)?|bill\s+paid)\s*(?:for\s+)?`)
	paymentRe      = regexp.MustCompile(`(?i)\s*\b(?:via|by|through|using|in)\s+(?:upi|card|cash|bank(?:\s+transfer)?|neft|gpay|paytm)\b`)
)

var (
	queryPrefixes = []string{"how", "what", "which", "show", "tell", "when", "did", "is ", "are ", "can ", "list", "who"}
	saleWords     = []string{"sold", "sale", "sell", "bought"}
	stockWords    = []string{"received", "delivery", "restock", "stock in", "purchased", "arrived"}
	expenseWords  = []string{"paid", "spent", "expense", "bill"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func parseAmount(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (RulesExtractor) Extract(_ context.Context, text string) (*domain.Extraction, error) {
	text = strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(text)

	switch {
	case lower == "":
		return nil, ErrNotUnderstood
	case strings.HasSuffix(lower, "?") || hasQueryPrefix(lower):
		return &domain.Extraction{Intent: string(domain.IntentQuery)}, nil
	case containsAny(lower, saleWords):
		return extractSale(text), nil
	case containsAny(lower, stockWords):
		return extractStock(text), nil
	case containsAny(lower, expenseWords):
		return extractExpense(text), nil
	}
	return nil, ErrNotUnderstood
}

func hasQueryPrefix(lower string) bool {
	for _, p := range queryPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func extractSale(text string) *domain.Extraction {
	ext := &domain.Extraction{Intent: string(domain.IntentSale)}
	if m := saleRe.FindStringSubmatch(text); m != nil {
		ext.Quantity = parseAmount(m[1])
		ext.Item = strings.TrimSpace(m[2])
	}
	if m := customerRe.FindStringSubmatch(text); m != nil {
		ext.Customer = strings.TrimSpace(m[1])
	}

	if m := unitPriceRe.FindStringSubmatch(text); m != nil {
		price := parseAmount(m[1])
		if price.Valid && m[2] == "" && ext.Quantity.Valid && ext.Quantity.Decimal.IsPositive() {
			// "for 3000" with no "each" is the line total
			price.Decimal = price.Decimal.Div(ext.Quantity.Decimal).Round(2)
		}
		ext.SellingPrice = price
	} else if m := moneyRe.FindStringSubmatch(text); m != nil {
		ext.SellingPrice = parseAmount(m[1])
	}

	if m := gstRe.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			ext.GSTRate = parseAmount(m[1])
		} else {
			ext.GSTRate = parseAmount(m[2])
		}
	}
	if m := costRe.FindStringSubmatch(text); m != nil {
		ext.CostPrice = parseAmount(m[1])
	}
	return ext
}

func extractStock(text string) *domain.Extraction {
	ext := &domain.Extraction{Intent: string(domain.IntentInventoryAdd)}
	if m := stockRe.FindStringSubmatch(text); m != nil {
		ext.Quantity = parseAmount(m[1])
		ext.Item = strings.TrimSpace(m[2])
	}
	switch {
	case costRe.MatchString(text):
		ext.CostPrice = parseAmount(costRe.FindStringSubmatch(text)[1])
	case moneyRe.MatchString(text):
		ext.CostPrice = parseAmount(moneyRe.FindStringSubmatch(text)[1])
	case unitPriceRe.MatchString(text):
		ext.CostPrice = parseAmount(unitPriceRe.FindStringSubmatch(text)[1])
	}
	return ext
}

func extractExpense(text string) *domain.Extraction {
	ext := &domain.Extraction{Intent: string(domain.IntentExpense)}
	rest := text
	if loc := moneyRe.FindStringSubmatchIndex(text); loc != nil {
		ext.Amount = parseAmount(text[loc[2]:loc[3]])
		rest = text[:loc[0]] + text[loc[1]:]
	} else if all := bareNumberRe.FindAllStringIndex(text, -1); len(all) > 0 {
		last := all[len(all)-1]
		ext.Amount = parseAmount(text[last[0]:last[1]])
		rest = text[:last[0]] + text[last[1]:]
	}

	ext.PaymentMethod = paymentMethod(strings.ToLower(text))
	rest = paymentRe.ReplaceAllString(rest, "")
	rest = expenseVerbRe.ReplaceAllString(rest, "")
	rest = strings.TrimSpace(strings.Trim(strings.Join(strings.Fields(rest), " "), " ,.:-"))
	rest = strings.TrimSuffix(strings.TrimSuffix(rest, " of"), " for")
	ext.Description = strings.TrimSpace(rest)
	return ext
}

func paymentMethod(lower string) string {
	switch {
	case strings.Contains(lower, "upi") || strings.Contains(lower, "gpay") || strings.Contains(lower, "paytm"):
		return "UPI"
	case strings.Contains(lower, "card"):
		return "Card"
	case strings.Contains(lower, "bank") || strings.Contains(lower, "neft") || strings.Contains(lower, "transfer"):
		return "Bank Transfer"
	case strings.Contains(lower, "cash"):
		return "Cash"
	}
	return ""
}
