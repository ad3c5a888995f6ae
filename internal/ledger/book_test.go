package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/store"
	"vyapar/backend/internal/store/memory"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestUpsertInventoryAddsToExistingStock(t *testing.T) {
	mem := memory.New()
	book := NewBook(mem, nil)
	ctx := context.Background()

	first, err := book.UpsertInventory(ctx, "Lipstick", d(20), d(150))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.OldStock.IsZero())

	second, err := book.UpsertInventory(ctx, "  LIPSTICK ", d(5), decimal.Zero)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "Lipstick", second.Item)
	assert.True(t, d(20).Equal(second.OldStock))
	assert.True(t, d(25).Equal(second.NewStock))

	grid := mem.Values(store.Inventory)
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"Lipstick", "25", "150"}, grid[1])
}

func TestUpsertInventorySequentialDeltasEqualTheirSum(t *testing.T) {
	ctx := context.Background()

	split := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Kurti", "3", "450"}},
	})
	_, err := NewBook(split, nil).UpsertInventory(ctx, "kurti", d(4), decimal.Zero)
	require.NoError(t, err)
	_, err = NewBook(split, nil).UpsertInventory(ctx, "Kurti", d(6), decimal.Zero)
	require.NoError(t, err)

	once := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Kurti", "3", "450"}},
	})
	_, err = NewBook(once, nil).UpsertInventory(ctx, "Kurti", d(10), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, once.Values(store.Inventory), split.Values(store.Inventory))
}

func TestUpsertInventoryOverwritesCostOnlyWhenSupplied(t *testing.T) {
	mem := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Saree", "2", "2200"}},
	})
	book := NewBook(mem, nil)
	ctx := context.Background()

	_, err := book.UpsertInventory(ctx, "Saree", d(1), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "2200", mem.Values(store.Inventory)[1][2])

	_, err = book.UpsertInventory(ctx, "Saree", d(1), d(2100))
	require.NoError(t, err)
	assert.Equal(t, []string{"Saree", "4", "2100"}, mem.Values(store.Inventory)[1])
}

func TestUpsertInventoryNewItemWithoutCostLeavesBlank(t *testing.T) {
	mem := memory.New()
	_, err := NewBook(mem, nil).UpsertInventory(context.Background(), "Bindi", d(12), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bindi", "12", ""}, mem.Values(store.Inventory)[1])
}

func TestUpsertMatchesFirstOfDuplicateRows(t *testing.T) {
	mem := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Kurti", "1", ""}, {"kurti", "9", ""}},
	})
	_, err := NewBook(mem, nil).UpsertInventory(context.Background(), "KURTI", d(1), decimal.Zero)
	require.NoError(t, err)

	grid := mem.Values(store.Inventory)
	assert.Equal(t, "2", grid[1][1])
	assert.Equal(t, "9", grid[2][1])
}

func TestDeductStockMissingItemLeavesStoreUnchanged(t *testing.T) {
	mem := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Lipstick", "20", "150"}},
	})
	before := mem.Values(store.Inventory)

	_, err := NewBook(mem, nil).DeductStock(context.Background(), "Perfume", d(1))
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, before, mem.Values(store.Inventory))
}

func TestDeductStockAllowsNegative(t *testing.T) {
	mem := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Lipstick", "2", "150"}},
	})
	next, err := NewBook(mem, nil).DeductStock(context.Background(), "lipstick", d(3))
	require.NoError(t, err)
	assert.True(t, d(-1).Equal(next))
	assert.Equal(t, "-1", mem.Values(store.Inventory)[1][1])
}

func TestUpsertCustomerOnlyOverwritesSuppliedFields(t *testing.T) {
	mem := memory.New()
	book := NewBook(mem, nil)
	ctx := context.Background()

	created, err := book.UpsertCustomer(ctx, domain.CustomerRecord{Name: "Mrs. Sharma"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"Mrs. Sharma", "", "", ""}, mem.Values(store.Customers)[1])

	created, err = book.UpsertCustomer(ctx, domain.CustomerRecord{Name: "mrs. sharma", Phone: "+919876543210"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"Mrs. Sharma", "+919876543210", "", ""}, mem.Values(store.Customers)[1])

	_, err = book.UpsertCustomer(ctx, domain.CustomerRecord{Name: "Mrs. Sharma", Address: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mrs. Sharma", "+919876543210", "", "Pune"}, mem.Values(store.Customers)[1])
}

func TestConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	mem := memory.New()
	book := NewBook(mem, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := book.UpsertInventory(ctx, "Kurti", d(1), decimal.Zero)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	grid := mem.Values(store.Inventory)
	require.Len(t, grid, 2)
	assert.Equal(t, "20", grid[1][1])
}

type recordingLocker struct {
	mu    sync.Mutex
	keys  []string
	fail  error
	freed int
}

func (l *recordingLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return nil, l.fail
	}
	l.keys = append(l.keys, key)
	return func() {
		l.mu.Lock()
		l.freed++
		l.mu.Unlock()
	}, nil
}

func TestBookTakesTableLock(t *testing.T) {
	locker := &recordingLocker{}
	book := NewBook(memory.New(), locker)
	ctx := context.Background()

	_, err := book.UpsertInventory(ctx, "Kurti", d(1), decimal.Zero)
	require.NoError(t, err)
	_, err = book.UpsertCustomer(ctx, domain.CustomerRecord{Name: "Priya"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Inventory", "Customers"}, locker.keys)
	assert.Equal(t, 2, locker.freed)
}

func TestBookLockFailureSkipsWrite(t *testing.T) {
	mem := memory.New()
	locker := &recordingLocker{fail: errors.New("redis down")}
	book := NewBook(mem, locker)

	_, err := book.UpsertInventory(context.Background(), "Kurti", d(1), decimal.Zero)
	require.Error(t, err)
	assert.Len(t, mem.Values(store.Inventory), 1)

	locker.fail = nil
	_, err = book.UpsertInventory(context.Background(), "Kurti", d(1), decimal.Zero)
	require.NoError(t, err)
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Scan(context.Context, store.Table) ([]store.Row, error) { return nil, f.err }

func TestScanFailureIsReturned(t *testing.T) {
	boom := errors.New("quota exceeded")
	book := NewBook(failingStore{Store: memory.New(), err: boom}, nil)

	_, err := book.UpsertInventory(context.Background(), "Kurti", d(1), decimal.Zero)
	assert.ErrorIs(t, err, boom)
}

// flakyCellStore fails the first UpdateCell on one column.
type flakyCellStore struct {
	store.Store
	column int
	failed bool
}

func (f *flakyCellStore) UpdateCell(ctx context.Context, table store.Table, rowIndex, column int, value string) error {
	if column == f.column && !f.failed {
		f.failed = true
		return errors.New("transient 503")
	}
	return f.Store.UpdateCell(ctx, table, rowIndex, column, value)
}

func TestUpsertInventoryRetryAfterCostFailureCountsOnce(t *testing.T) {
	mem := memory.NewWithValues(map[store.Table][][]string{
		store.Inventory: {store.Headers(store.Inventory), {"Kurti", "10", "400"}},
	})
	book := NewBook(&flakyCellStore{Store: mem, column: store.InventoryCostPrice}, nil)
	ctx := context.Background()

	_, err := book.UpsertInventory(ctx, "Kurti", d(5), d(450))
	require.Error(t, err)
	assert.Equal(t, []string{"Kurti", "10", "400"}, mem.Values(store.Inventory)[1])

	change, err := book.UpsertInventory(ctx, "Kurti", d(5), d(450))
	require.NoError(t, err)
	assert.True(t, d(15).Equal(change.NewStock))
	assert.Equal(t, []string{"Kurti", "15", "450"}, mem.Values(store.Inventory)[1])
}
