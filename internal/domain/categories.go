package domain

import "strings"

const OtherCategory = "Other"

// ExpenseCategories is the list offered by expense forms.
var ExpenseCategories = []string{
	"Rent", "Utilities", "Salaries", "Transportation", "Marketing",
	"Office Supplies", "Maintenance", OtherCategory,
}

var PaymentMethods = []string{DefaultPaymentMethod, "Bank Transfer", "UPI", "Card"}

// checked in order, first keyword contained in the description wins
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"rent", "Rent"},
	{"electricity", "Utilities"},
	{"water", "Utilities"},
	{"internet", "Utilities"},
	{"phone", "Utilities"},
	{"salary", "Salaries"},
	{"wages", "Salaries"},
	{"transport", "Transportation"},
	{"fuel", "Transportation"},
	{"advertising", "Marketing"},
	{"marketing", "Marketing"},
	{"stationery", "Office Supplies"},
	{"repair", "Maintenance"},
	{"maintenance", "Maintenance"},
}

func SuggestCategory(description string) string {
	lower := strings.ToLower(description)
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.category
		}
	}
	return OtherCategory
}
