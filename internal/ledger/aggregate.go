package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/store"
)

// Rankings shown in a snapshot.
const snapshotTopN = 5

// Aggregator derives figures from full table scans. Nothing is memoized, so every call
// reflects the store as it is now.
type Aggregator struct {
	store      store.Store
	dateLayout string
}

func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s, dateLayout: time.DateOnly}
}

// WithDateLayout sets the layout sale dates are written in, used to order the daily trend.
func (a *Aggregator) WithDateLayout(layout string) *Aggregator {
	if layout != "" {
		a.dateLayout = layout
	}
	return a
}

func scanAll[T any](ctx context.Context, s store.Store, table store.Table, decode func(store.Row) T) ([]T, error) {
	rows, err := s.Scan(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", strings.ToLower(string(table)), err)
	}
	return store.DecodeAll(rows, decode), nil
}

func (a *Aggregator) Sales(ctx context.Context) ([]domain.SaleRecord, error) {
	return scanAll(ctx, a.store, store.Sales, store.DecodeSale)
}

func (a *Aggregator) Inventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	return scanAll(ctx, a.store, store.Inventory, store.DecodeInventory)
}

func (a *Aggregator) Expenses(ctx context.Context) ([]domain.ExpenseRecord, error) {
	return scanAll(ctx, a.store, store.Expenses, store.DecodeExpense)
}

func (a *Aggregator) Customers(ctx context.Context) ([]domain.CustomerRecord, error) {
	return scanAll(ctx, a.store, store.Customers, store.DecodeCustomer)
}

func (a *Aggregator) Profit(ctx context.Context) (domain.ProfitSummary, error) {
	sales, err := a.Sales(ctx)
	if err != nil {
		return domain.ProfitSummary{}, err
	}
	expenses, err := a.Expenses(ctx)
	if err != nil {
		return domain.ProfitSummary{}, err
	}
	return ComputeProfit(sales, expenses), nil
}

func (a *Aggregator) Statement(ctx context.Context) (domain.Statement, error) {
	p, err := a.Profit(ctx)
	if err != nil {
		return domain.Statement{}, err
	}
	return domain.NewStatement(p), nil
}

func (a *Aggregator) LowStock(ctx context.Context, threshold decimal.Decimal) ([]domain.InventoryRecord, error) {
	items, err := a.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	return FilterLowStock(items, threshold), nil
}

func (a *Aggregator) TopSellingItems(ctx context.Context, n int) ([]domain.ItemCount, error) {
	sales, err := a.Sales(ctx)
	if err != nil {
		return nil, err
	}
	return RankItems(sales, n), nil
}

func (a *Aggregator) DailySales(ctx context.Context) ([]domain.DailyTotal, error) {
	sales, err := a.Sales(ctx)
	if err != nil {
		return nil, err
	}
	return DailySales(sales, a.dateLayout), nil
}

func (a *Aggregator) TopCustomers(ctx context.Context, n int) ([]domain.CustomerTotal, error) {
	sales, err := a.Sales(ctx)
	if err != nil {
		return nil, err
	}
	return RankCustomers(sales, n), nil
}

// Snapshot reads each table once and derives every summary from that read.
func (a *Aggregator) Snapshot(ctx context.Context, lowStockThreshold decimal.Decimal) (domain.Snapshot, error) {
	sales, err := a.Sales(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	inventory, err := a.Inventory(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	expenses, err := a.Expenses(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	low := FilterLowStock(inventory, lowStockThreshold)
	return domain.Snapshot{
		Profit:       ComputeProfit(sales, expenses),
		Sales:        SummarizeSales(sales),
		Inventory:    SummarizeInventory(inventory, len(low)),
		Expenses:     SummarizeExpenses(expenses),
		LowStock:     low,
		TopItems:     RankItems(sales, snapshotTopN),
		TopCustomers: RankCustomers(sales, snapshotTopN),
		DailySales:   DailySales(sales, a.dateLayout),
	}, nil
}

// ComputeProfit: revenue includes GST; cost counts only sales with a cost price.
func ComputeProfit(sales []domain.SaleRecord, expenses []domain.ExpenseRecord) domain.ProfitSummary {
	var p domain.ProfitSummary
	for _, s := range sales {
		p.Revenue = p.Revenue.Add(s.TotalAmount())
		p.Cost = p.Cost.Add(s.COGS())
	}
	for _, e := range expenses {
		p.Expenses = p.Expenses.Add(e.Amount)
	}
	p.Profit = p.Revenue.Sub(p.Cost).Sub(p.Expenses)
	return p
}

// FilterLowStock keeps items with stock strictly below threshold, in store order.
func FilterLowStock(items []domain.InventoryRecord, threshold decimal.Decimal) []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0)
	for _, it := range items {
		if it.Stock.LessThan(threshold) {
			out = append(out, it)
		}
	}
	return out
}

// group accumulates values per case-folded key, keeping first-seen order and spelling.
type group[V any] struct {
	index map[string]int
	names []string
	vals  []V
}

func newGroup[V any]() *group[V] {
	return &group[V]{index: map[string]int{}}
}

func (g *group[V]) at(name string) *V {
	key := foldKey(name)
	i, ok := g.index[key]
	if !ok {
		var zero V
		i = len(g.names)
		g.index[key] = i
		g.names = append(g.names, strings.TrimSpace(name))
		g.vals = append(g.vals, zero)
	}
	return &g.vals[i]
}

// RankItems counts sale events per item, most first. Ties keep first appearance order.
func RankItems(sales []domain.SaleRecord, n int) []domain.ItemCount {
	g := newGroup[int]()
	for _, s := range sales {
		if strings.TrimSpace(s.Item) == "" {
			continue
		}
		*g.at(s.Item)++
	}
	out := make([]domain.ItemCount, len(g.names))
	for i, name := range g.names {
		out[i] = domain.ItemCount{Item: name, Sales: g.vals[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sales > out[j].Sales })
	return limit(out, n)
}

// RankCustomers sums sale totals per named customer, highest first. Ties keep first appearance order.
func RankCustomers(sales []domain.SaleRecord, n int) []domain.CustomerTotal {
	g := newGroup[decimal.Decimal]()
	for _, s := range sales {
		if strings.TrimSpace(s.Customer) == "" {
			continue
		}
		v := g.at(s.Customer)
		*v = v.Add(s.TotalAmount())
	}
	out := make([]domain.CustomerTotal, len(g.names))
	for i, name := range g.names {
		out[i] = domain.CustomerTotal{Customer: name, Total: g.vals[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return limit(out, n)
}

// DailySales sums sale totals per date, oldest first. Dates that do not parse with layout
// sort after the rest, as text. Rows without a date are skipped.
func DailySales(sales []domain.SaleRecord, layout string) []domain.DailyTotal {
	idx := map[string]int{}
	out := []domain.DailyTotal{}
	for _, s := range sales {
		date := strings.TrimSpace(s.Date)
		if date == "" {
			continue
		}
		i, ok := idx[date]
		if !ok {
			i = len(out)
			idx[date] = i
			out = append(out, domain.DailyTotal{Date: date})
		}
		out[i].Total = out[i].Total.Add(s.TotalAmount())
	}

	parsed := make(map[string]time.Time, len(out))
	for _, d := range out {
		if t, err := time.Parse(layout, d.Date); err == nil {
			parsed[d.Date] = t
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := parsed[out[i].Date]
		tj, jok := parsed[out[j].Date]
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok != jok:
			return iok
		default:
			return out[i].Date < out[j].Date
		}
	})
	return out
}

func limit[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

func SummarizeSales(sales []domain.SaleRecord) domain.SalesSummary {
	sum := domain.SalesSummary{Count: len(sales)}
	for _, s := range sales {
		sum.Revenue = sum.Revenue.Add(s.TotalAmount())
	}
	if sum.Count > 0 {
		sum.AverageSale = sum.Revenue.Div(decimal.NewFromInt(int64(sum.Count))).Round(2)
	}
	if top := RankItems(sales, 1); len(top) > 0 {
		sum.TopItem = top[0].Item
	}
	return sum
}

func SummarizeInventory(items []domain.InventoryRecord, lowStock int) domain.InventorySummary {
	sum := domain.InventorySummary{Items: len(items), LowStock: lowStock}
	for _, it := range items {
		sum.TotalUnits = sum.TotalUnits.Add(it.Stock)
	}
	return sum
}

// SummarizeExpenses groups by category name as written; a blank category counts as Other.
func SummarizeExpenses(expenses []domain.ExpenseRecord) domain.ExpenseSummary {
	sum := domain.ExpenseSummary{Count: len(expenses), ByCategory: []domain.CategoryAmount{}}
	idx := map[string]int{}
	for _, e := range expenses {
		sum.Total = sum.Total.Add(e.Amount)
		cat := strings.TrimSpace(e.Category)
		if cat == "" {
			cat = domain.OtherCategory
		}
		i, ok := idx[cat]
		if !ok {
			i = len(sum.ByCategory)
			idx[cat] = i
			sum.ByCategory = append(sum.ByCategory, domain.CategoryAmount{Category: cat})
		}
		sum.ByCategory[i].Amount = sum.ByCategory[i].Amount.Add(e.Amount)
	}
	if sum.Count > 0 {
		sum.Average = sum.Total.Div(decimal.NewFromInt(int64(sum.Count))).Round(2)
	}
	sort.SliceStable(sum.ByCategory, func(i, j int) bool {
		return sum.ByCategory[i].Amount.GreaterThan(sum.ByCategory[j].Amount)
	})
	if len(sum.ByCategory) > 0 {
		sum.TopCategory = sum.ByCategory[0].Category
	}
	return sum
}
