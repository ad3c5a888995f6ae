package bulk

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
)

// Catalog is a batch of records to load, already in request form.
type Catalog struct {
	Inventory []domain.InventoryRequest
	Customers []domain.CustomerRequest
	Expenses  []domain.ExpenseRequest
	Sales     []domain.SaleRequest
}

type product struct {
	name    string
	cost    int64
	selling int64
	stock   int64
}

var products = []product{
	{"Red Kurti", 800, 1500, 50},
	{"Blue Kurti", 750, 1400, 45},
	{"Green Kurti", 800, 1500, 40},
	{"Pink Saree", 1500, 2800, 30},
	{"Blue Saree", 1400, 2600, 35},
	{"Yellow Saree", 1600, 3000, 25},
	{"Lipstick", 150, 300, 100},
	{"Sindoor", 50, 120, 80},
	{"Bindi Pack", 20, 50, 120},
	{"Bangles Set", 80, 200, 90},
	{"Gold Bangles", 300, 650, 40},
	{"Jhumka Earrings", 250, 550, 60},
	{"Necklace Set", 500, 1100, 30},
	{"Silk Dupatta", 400, 850, 45},
	{"Cotton Dupatta", 200, 450, 50},
}

var customers = []domain.CustomerRequest{
	{Name: "Mrs. Sharma", Phone: "9876543210", Email: "sharma@example.com", Address: "Sector 15, Rohini, Delhi"},
	{Name: "Priya Singh", Phone: "9123456789", Email: "priya@example.com", Address: "Nehru Nagar, Andheri, Mumbai"},
	{Name: "Anita Desai", Phone: "9234567890", Email: "anita@example.com", Address: "MG Road, Bangalore"},
	{Name: "Rekha Gupta", Phone: "9345678901", Email: "rekha@example.com", Address: "Park Street, Kolkata"},
	{Name: "Sunita Verma", Phone: "9456789012", Email: "sunita@example.com", Address: "Banjara Hills, Hyderabad"},
	{Name: "Meena Patel", Phone: "9567890123", Email: "meena@example.com", Address: "Satellite, Ahmedabad"},
	{Name: "Kavita Reddy", Phone: "9678901234", Email: "kavita@example.com", Address: "Anna Nagar, Chennai"},
	{Name: "Pooja Joshi", Phone: "9789012345", Email: "pooja@example.com", Address: "Koramangala, Bangalore"},
	{Name: "Lakshmi Iyer", Phone: "9890123456", Email: "lakshmi@example.com", Address: "T Nagar, Chennai"},
	{Name: "Deepa Rao", Phone: "9901234567", Email: "deepa@example.com", Address: "Indira Nagar, Bangalore"},
}

type expense struct {
	category    string
	description string
	amount      int64
	payment     string
	daysAgo     int
}

var expenses = []expense{
	{"Rent", "Shop rent", 15000, "Bank Transfer", 5},
	{"Utilities", "Electricity bill", 3500, "UPI", 6},
	{"Utilities", "Water bill", 800, "Cash", 6},
	{"Utilities", "Internet & Phone", 1200, "UPI", 6},
	{"Salaries", "Shop assistant salary", 12000, "Bank Transfer", 5},
	{"Salaries", "Helper wages", 8000, "Cash", 5},
	{"Transportation", "Auto fare", 600, "Cash", 28},
	{"Transportation", "Petrol", 1300, "Cash", 20},
	{"Transportation", "Delivery charges", 800, "UPI", 12},
	{"Office Supplies", "Packing materials", 500, "Cash", 25},
	{"Office Supplies", "Bills book", 180, "Cash", 15},
	{"Maintenance", "Shop cleaning", 350, "Cash", 22},
	{"Marketing", "Facebook ads", 1500, "UPI", 18},
	{"Maintenance", "AC servicing", 2500, "Cash", 25},
	{"Marketing", "Banner printing", 1800, "UPI", 20},
}

type salePattern struct {
	item     string
	customer string
	quantity int64
	daysAgo  int
}

var salePatterns = []salePattern{
	{"Red Kurti", "Mrs. Sharma", 2, 28},
	{"Lipstick", "Priya Singh", 3, 28},
	{"Bangles Set", "Anita Desai", 2, 27},
	{"Blue Saree", "Rekha Gupta", 1, 26},
	{"Sindoor", "Sunita Verma", 2, 26},
	{"Jhumka Earrings", "Meena Patel", 1, 25},
	{"Green Kurti", "Kavita Reddy", 1, 24},
	{"Bindi Pack", "Pooja Joshi", 4, 24},
	{"Silk Dupatta", "Lakshmi Iyer", 2, 23},
	{"Cotton Dupatta", "Deepa Rao", 1, 22},

	{"Pink Saree", "Mrs. Sharma", 1, 21},
	{"Lipstick", "Anita Desai", 5, 21},
	{"Gold Bangles", "Priya Singh", 2, 20},
	{"Red Kurti", "Sunita Verma", 3, 19},
	{"Necklace Set", "Rekha Gupta", 1, 19},
	{"Blue Kurti", "Meena Patel", 2, 18},
	{"Bangles Set", "Kavita Reddy", 3, 17},
	{"Yellow Saree", "Pooja Joshi", 1, 17},
	{"Silk Dupatta", "Lakshmi Iyer", 1, 16},
	{"Jhumka Earrings", "Deepa Rao", 2, 15},

	{"Red Kurti", "Mrs. Sharma", 2, 14},
	{"Blue Saree", "Priya Singh", 2, 14},
	{"Lipstick", "Anita Desai", 4, 13},
	{"Pink Saree", "Rekha Gupta", 1, 13},
	{"Green Kurti", "Sunita Verma", 2, 12},
	{"Bangles Set", "Meena Patel", 4, 12},
	{"Gold Bangles", "Kavita Reddy", 1, 11},
	{"Sindoor", "Pooja Joshi", 3, 11},
	{"Bindi Pack", "Lakshmi Iyer", 5, 10},
	{"Necklace Set", "Deepa Rao", 2, 10},
	{"Cotton Dupatta", "Mrs. Sharma", 2, 9},
	{"Jhumka Earrings", "Priya Singh", 1, 8},

	{"Blue Kurti", "Anita Desai", 3, 7},
	{"Yellow Saree", "Rekha Gupta", 1, 7},
	{"Lipstick", "Sunita Verma", 6, 6},
	{"Red Kurti", "Meena Patel", 2, 6},
	{"Silk Dupatta", "Kavita Reddy", 3, 5},
	{"Bangles Set", "Pooja Joshi", 2, 5},
	{"Pink Saree", "Lakshmi Iyer", 1, 4},
	{"Sindoor", "Deepa Rao", 2, 4},
	{"Green Kurti", "Mrs. Sharma", 1, 3},
	{"Gold Bangles", "Priya Singh", 2, 3},
	{"Bindi Pack", "Anita Desai", 3, 2},
	{"Cotton Dupatta", "Rekha Gupta", 2, 2},
	{"Necklace Set", "Sunita Verma", 1, 1},
	{"Blue Saree", "Meena Patel", 1, 1},
}

// clothingGST applies to apparel; everything else is taxed at the standard rate.
const (
	clothingGST = 5
	standardGST = 18
)

func gstFor(item string) int64 {
	for _, w := range []string{"Kurti", "Saree", "Dupatta"} {
		if strings.Contains(item, w) {
			return clothingGST
		}
	}
	return standardGST
}

// DefaultCatalog is a month of trading for a small clothing and cosmetics shop, dated
// relative to today.
func DefaultCatalog(today time.Time, dateFormat string) Catalog {
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}
	daysAgo := func(n int) string { return today.AddDate(0, 0, -n).Format(dateFormat) }

	var cat Catalog
	byName := make(map[string]product, len(products))
	for _, p := range products {
		byName[p.name] = p
		cat.Inventory = append(cat.Inventory, domain.InventoryRequest{
			Item:      p.name,
			Quantity:  decimal.NewFromInt(p.stock),
			CostPrice: decimal.NewFromInt(p.cost),
		})
	}
	cat.Customers = append(cat.Customers, customers...)
	for _, e := range expenses {
		cat.Expenses = append(cat.Expenses, domain.ExpenseRequest{
			Date:          daysAgo(e.daysAgo),
			Category:      e.category,
			Description:   e.description,
			Amount:        decimal.NewFromInt(e.amount),
			PaymentMethod: e.payment,
		})
	}
	for _, s := range salePatterns {
		p := byName[s.item]
		cat.Sales = append(cat.Sales, domain.SaleRequest{
			Date:         daysAgo(s.daysAgo),
			Item:         p.name,
			Quantity:     decimal.NewFromInt(s.quantity),
			SellingPrice: decimal.NewFromInt(p.selling),
			CostPrice:    decimal.NewFromInt(p.cost),
			Customer:     s.customer,
			GSTRate:      decimal.NewNullDecimal(decimal.NewFromInt(gstFor(p.name))),
		})
	}
	return cat
}
