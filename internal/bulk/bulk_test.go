package bulk

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vyapar/backend/internal/assistant"
	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/ledger"
	"vyapar/backend/internal/service"
	"vyapar/backend/internal/store"
	"vyapar/backend/internal/store/memory"
)

type recordedSleep struct {
	waits []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestRetryUsesFixedBackoff(t *testing.T) {
	rec := &recordedSleep{}
	calls := 0
	err := Retry(context.Background(), 3, 2*time.Second, rec.sleep, "sale 1", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("quota exceeded")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, rec.waits)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	rec := &recordedSleep{}
	calls := 0
	boom := errors.New("503")
	err := Retry(context.Background(), 3, time.Second, rec.sleep, "x", func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.waits, 2, "no wait after the last attempt")
}

func TestRetryDoesNotRepeatValidationErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Second, (&recordedSleep{}).sleep, "x", func(context.Context) error {
		calls++
		return domain.NewValidationError("Item name is required")
	})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, nil, "x", func(context.Context) error {
		calls++
		cancel()
		return errors.New("503")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

// flakyLedger fails the first n calls of every operation.
type flakyLedger struct {
	failures int
	calls    map[string]int
}

func (f *flakyLedger) fail(op string) error {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	if f.calls[op] <= f.failures {
		return errors.New("rate limited")
	}
	return nil
}

func (f *flakyLedger) AddInventory(context.Context, domain.InventoryRequest) (domain.InventoryChange, error) {
	return domain.InventoryChange{}, f.fail("inventory")
}

func (f *flakyLedger) SaveCustomer(context.Context, domain.CustomerRequest) (domain.CustomerRecord, bool, error) {
	return domain.CustomerRecord{}, true, f.fail("customer")
}

func (f *flakyLedger) RecordExpense(context.Context, domain.ExpenseRequest) (domain.ExpenseRecord, error) {
	return domain.ExpenseRecord{}, f.fail("expense")
}

func (f *flakyLedger) RecordSale(context.Context, domain.SaleRequest) (*domain.SaleReceipt, error) {
	if err := f.fail("sale"); err != nil {
		return nil, err
	}
	return &domain.SaleReceipt{}, nil
}

func oneOfEach() Catalog {
	return Catalog{
		Inventory: []domain.InventoryRequest{{Item: "Kurti"}},
		Customers: []domain.CustomerRequest{{Name: "Priya"}},
		Expenses:  []domain.ExpenseRequest{{Description: "Rent"}},
		Sales:     []domain.SaleRequest{{Item: "Kurti"}},
	}
}

func TestLoaderPacesAndRetries(t *testing.T) {
	rec := &recordedSleep{}
	fl := &flakyLedger{failures: 1}
	loader := NewLoader(fl, Options{Pace: 500 * time.Millisecond, Backoff: 2 * time.Second, MaxAttempts: 3, Sleep: rec.sleep})

	report, err := loader.Load(context.Background(), oneOfEach())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total())
	assert.Empty(t, report.Failed)
	// each record: one backoff then one pace
	want := []time.Duration{}
	for n := 0; n < 4; n++ {
		want = append(want, 2*time.Second, 500*time.Millisecond)
	}
	assert.Equal(t, want, rec.waits)
}

func TestLoaderReportsExhaustedRecordsAndContinues(t *testing.T) {
	fl := &flakyLedger{failures: 5}
	loader := NewLoader(fl, Options{MaxAttempts: 3, Sleep: (&recordedSleep{}).sleep})

	report, err := loader.Load(context.Background(), oneOfEach())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())
	assert.Len(t, report.Failed, 4)
	assert.Equal(t, 3, fl.calls["sale"])
}

func TestLoaderStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := NewLoader(&flakyLedger{}, DefaultOptions()).Load(ctx, oneOfEach())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Total())
}

func TestDefaultCatalog(t *testing.T) {
	today := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	cat := DefaultCatalog(today, "")

	assert.Len(t, cat.Inventory, 15)
	assert.Len(t, cat.Customers, 10)
	assert.Len(t, cat.Expenses, 15)
	assert.Len(t, cat.Sales, 46)

	first := cat.Sales[0]
	assert.Equal(t, "Red Kurti", first.Item)
	assert.Equal(t, "2025-01-03", first.Date)
	assert.Equal(t, "1500", first.SellingPrice.String())
	assert.Equal(t, "800", first.CostPrice.String())
	assert.Equal(t, "5", first.GSTRate.Decimal.String())
	assert.Equal(t, "18", cat.Sales[1].GSTRate.Decimal.String(), "lipstick")
}

func newService(mem *memory.Store) *service.Service {
	return service.New(ledger.NewBook(mem, nil), ledger.NewAggregator(mem), assistant.NewRulesExtractor(),
		assistant.NewSummaryAdvisor("₹"), service.Options{DefaultGSTRate: decimal.NewFromInt(18)})
}

func TestLoadDefaultCatalogIntoMemory(t *testing.T) {
	mem := memory.New()
	svc := newService(mem)
	loader := NewLoader(svc, Options{MaxAttempts: 3, Sleep: (&recordedSleep{}).sleep})

	report, err := loader.Load(context.Background(), DefaultCatalog(time.Now(), ""))
	require.NoError(t, err)
	assert.Equal(t, 15, report.Inventory)
	assert.Equal(t, 15, report.Expenses)
	assert.Equal(t, 46, report.Sales)
	assert.Empty(t, report.Warnings)

	ctx := context.Background()
	st, err := svc.Statement(ctx)
	require.NoError(t, err)
	assert.Equal(t, "83872.7", st.Revenue.String())
	assert.Equal(t, "39520", st.COGS.String())
	assert.Equal(t, "50030", st.OperatingExpenses.String())
	assert.Equal(t, "-5677.3", st.NetProfit.String())

	inv, err := svc.ListInventory(ctx)
	require.NoError(t, err)
	require.Len(t, inv, 15)
	assert.Equal(t, "Red Kurti", inv[0].Item)
	assert.Equal(t, "41", inv[0].Stock.String())

	customers, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 10)
}

type costCellOutage struct {
	*memory.Store
	failed bool
}

func (s *costCellOutage) UpdateCell(ctx context.Context, table store.Table, rowIndex, column int, value string) error {
	if column == store.InventoryCostPrice && !s.failed {
		s.failed = true
		return errors.New("transient 503")
	}
	return s.Store.UpdateCell(ctx, table, rowIndex, column, value)
}

func TestLoaderRetriedRestockCountsOnce(t *testing.T) {
	mem := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Kurti", "10", "400"}},
	})
	flaky := &costCellOutage{Store: mem}
	svc := service.New(ledger.NewBook(flaky, nil), ledger.NewAggregator(flaky), assistant.NewRulesExtractor(),
		assistant.NewSummaryAdvisor("₹"), service.Options{DefaultGSTRate: decimal.NewFromInt(18)})
	loader := NewLoader(svc, Options{MaxAttempts: 3, Sleep: (&recordedSleep{}).sleep})

	report, err := loader.Load(context.Background(), Catalog{
		Inventory: []domain.InventoryRequest{{Item: "Kurti", Quantity: decimal.NewFromInt(5), CostPrice: decimal.NewFromInt(450)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inventory)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"Kurti", "15", "450"}, mem.Values(store.Inventory)[1])
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Sales"))
	require.NoError(t, f.SetSheetRow("Sales", "A1", &[]interface{}{"Date", "Item", "Quantity", "Cost Price", "Selling Price", "Customer", "GST Rate"}))
	require.NoError(t, f.SetSheetRow("Sales", "A2", &[]interface{}{"2025-01-02", "Kurti", 2, "", 1500, "Mrs. Sharma", 5}))
	require.NoError(t, f.SetSheetRow("Sales", "A3", &[]interface{}{"2025-01-03", "Lipstick", 1, 150, 299}))

	_, err := f.NewSheet("inventory")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("inventory", "A1", &[]interface{}{"Item", "Stock", "Cost Price"}))
	require.NoError(t, f.SetSheetRow("inventory", "A2", &[]interface{}{"Kurti", 10, 800}))

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"ignored"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cat, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Len(t, cat.Sales, 2)
	assert.Equal(t, "Kurti", cat.Sales[0].Item)
	assert.True(t, cat.Sales[0].CostPrice.IsZero())
	assert.True(t, cat.Sales[0].GSTRate.Valid)
	assert.Equal(t, "5", cat.Sales[0].GSTRate.Decimal.String())
	assert.False(t, cat.Sales[1].GSTRate.Valid, "blank GST falls back to the default")
	assert.Equal(t, "Mrs. Sharma", cat.Sales[0].Customer)

	require.Len(t, cat.Inventory, 1)
	assert.Equal(t, "10", cat.Inventory[0].Quantity.String())
	assert.Empty(t, cat.Customers)
	assert.Empty(t, cat.Expenses)

	mem := memory.New()
	report, err := NewLoader(newService(mem), Options{Sleep: (&recordedSleep{}).sleep}).Load(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total())
	assert.Equal(t, "18", mem.Values(store.Sales)[2][store.SaleGSTRate])
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "Lipstick")
}

func TestReadWorkbookRejectsGarbage(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
