package service

import (
	"context"

	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
)

func (s *Service) ListSales(ctx context.Context) ([]domain.SaleLine, error) {
	sales, err := s.agg.Sales(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.SaleLine, 0, len(sales))
	for _, sale := range sales {
		lines = append(lines, domain.NewSaleLine(sale))
	}
	return lines, nil
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	return s.agg.Inventory(ctx)
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.ExpenseRecord, error) {
	return s.agg.Expenses(ctx)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.CustomerRecord, error) {
	return s.agg.Customers(ctx)
}

// LowStock uses the configured threshold when none is given.
func (s *Service) LowStock(ctx context.Context, threshold decimal.NullDecimal) ([]domain.InventoryRecord, error) {
	t := s.opts.LowStockThreshold
	if threshold.Valid {
		t = threshold.Decimal
	}
	return s.agg.LowStock(ctx, t)
}

func (s *Service) TopItems(ctx context.Context, n int) ([]domain.ItemCount, error) {
	return s.agg.TopSellingItems(ctx, n)
}

// DailySales is the sales trend: totals per sale date, oldest first.
func (s *Service) DailySales(ctx context.Context) ([]domain.DailyTotal, error) {
	return s.agg.DailySales(ctx)
}

func (s *Service) TopCustomers(ctx context.Context, n int) ([]domain.CustomerTotal, error) {
	return s.agg.TopCustomers(ctx, n)
}

func (s *Service) Statement(ctx context.Context) (domain.Statement, error) {
	return s.agg.Statement(ctx)
}

func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	snap, err := s.agg.Snapshot(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{
		Currency:      s.opts.Currency,
		MarginPercent: snap.Profit.MarginPercent(),
		Snapshot:      snap,
	}, nil
}

func (s *Service) Insight(ctx context.Context, question string) (string, error) {
	snap, err := s.agg.Snapshot(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return "", err
	}
	return s.advisor.Insight(ctx, question, snap), nil
}

func (s *Service) Advice(ctx context.Context) (string, error) {
	snap, err := s.agg.Snapshot(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return "", err
	}
	return s.advisor.Advice(ctx, snap), nil
}

func (s *Service) SuggestCategory(description string) string {
	return domain.SuggestCategory(description)
}
