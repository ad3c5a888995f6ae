package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/store"
)

var ErrItemNotFound = errors.New("item not found in inventory")

// Locker serializes read-then-write sequences across processes sharing one store.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Book is the single write path into the ledger. Upserts scan the table, pick the first
// row whose key matches case-insensitively, then update cells by position; the mutex (and
// the optional distributed lock) keeps two such sequences from interleaving.
type Book struct {
	store  store.Store
	locker Locker
	mu     sync.Mutex
}

// NewBook wraps s. locker may be nil when a single process owns the store.
func NewBook(s store.Store, locker Locker) *Book {
	return &Book{store: s, locker: locker}
}

func (b *Book) guard(ctx context.Context, table store.Table) (func(), error) {
	b.mu.Lock()
	if b.locker == nil {
		return b.mu.Unlock, nil
	}
	release, err := b.locker.Lock(ctx, string(table))
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	return func() {
		release()
		b.mu.Unlock()
	}, nil
}

// foldKey is the matching key for item and customer names.
func foldKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func findRow(rows []store.Row, header, name string) (store.Row, bool) {
	key := foldKey(name)
	for _, r := range rows {
		if foldKey(r.Get(header)) == key {
			return r, true
		}
	}
	return store.Row{}, false
}

func (b *Book) AppendSale(ctx context.Context, sale domain.SaleRecord) error {
	if err := b.store.Append(ctx, store.Sales, store.EncodeSale(sale)); err != nil {
		return fmt.Errorf("append sale: %w", err)
	}
	log.Info().Str("item", sale.Item).Str("quantity", sale.Quantity.String()).Msg("sale recorded")
	return nil
}

func (b *Book) AppendExpense(ctx context.Context, expense domain.ExpenseRecord) error {
	if err := b.store.Append(ctx, store.Expenses, store.EncodeExpense(expense)); err != nil {
		return fmt.Errorf("append expense: %w", err)
	}
	log.Info().Str("category", expense.Category).Str("amount", expense.Amount.String()).Msg("expense recorded")
	return nil
}

// UpsertInventory adds delta to the matching item's stock, or appends a new item with
// stock = delta. The cost price is only overwritten when a non-zero cost is supplied.
func (b *Book) UpsertInventory(ctx context.Context, item string, delta, costPrice decimal.Decimal) (domain.InventoryChange, error) {
	release, err := b.guard(ctx, store.Inventory)
	if err != nil {
		return domain.InventoryChange{}, err
	}
	defer release()

	rows, err := b.store.Scan(ctx, store.Inventory)
	if err != nil {
		return domain.InventoryChange{}, fmt.Errorf("scan inventory: %w", err)
	}

	row, ok := findRow(rows, store.Headers(store.Inventory)[store.InventoryItem], item)
	if !ok {
		rec := domain.InventoryRecord{Item: strings.TrimSpace(item), Stock: delta, CostPrice: costPrice}
		if err := b.store.Append(ctx, store.Inventory, store.EncodeInventory(rec)); err != nil {
			return domain.InventoryChange{}, fmt.Errorf("append inventory: %w", err)
		}
		log.Info().Str("item", rec.Item).Str("stock", delta.String()).Msg("inventory item added")
		return domain.InventoryChange{Item: rec.Item, OldStock: decimal.Zero, NewStock: delta, Created: true}, nil
	}

	current := store.DecodeInventory(row)
	next := current.Stock.Add(delta)
	// Stock goes last: a failure before it leaves nothing a retry would count twice.
	if !costPrice.IsZero() {
		if err := b.store.UpdateCell(ctx, store.Inventory, row.Index, store.InventoryCostPrice, store.FormatNumber(costPrice)); err != nil {
			return domain.InventoryChange{}, fmt.Errorf("update cost price: %w", err)
		}
	}
	if err := b.store.UpdateCell(ctx, store.Inventory, row.Index, store.InventoryStock, store.FormatNumber(next)); err != nil {
		return domain.InventoryChange{}, fmt.Errorf("update stock: %w", err)
	}
	log.Info().Str("item", current.Item).Str("from", current.Stock.String()).Str("to", next.String()).Msg("inventory updated")
	return domain.InventoryChange{Item: current.Item, OldStock: current.Stock, NewStock: next}, nil
}

// DeductStock subtracts quantity from the matching item. Stock may go negative, which is
// logged and allowed. ErrItemNotFound leaves the store untouched.
func (b *Book) DeductStock(ctx context.Context, item string, quantity decimal.Decimal) (decimal.Decimal, error) {
	release, err := b.guard(ctx, store.Inventory)
	if err != nil {
		return decimal.Zero, err
	}
	defer release()

	rows, err := b.store.Scan(ctx, store.Inventory)
	if err != nil {
		return decimal.Zero, fmt.Errorf("scan inventory: %w", err)
	}
	row, ok := findRow(rows, store.Headers(store.Inventory)[store.InventoryItem], item)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrItemNotFound, strings.TrimSpace(item))
	}

	current := store.DecodeInventory(row)
	next := current.Stock.Sub(quantity)
	if next.IsNegative() {
		log.Warn().Str("item", current.Item).Str("from", current.Stock.String()).Str("to", next.String()).Msg("stock going negative")
	}
	if err := b.store.UpdateCell(ctx, store.Inventory, row.Index, store.InventoryStock, store.FormatNumber(next)); err != nil {
		return decimal.Zero, fmt.Errorf("update stock: %w", err)
	}
	log.Info().Str("item", current.Item).Str("from", current.Stock.String()).Str("to", next.String()).Msg("stock deducted")
	return next, nil
}

// UpsertCustomer overwrites only the non-empty fields of a matching customer, or appends
// a new row. It reports whether a row was created.
func (b *Book) UpsertCustomer(ctx context.Context, c domain.CustomerRecord) (bool, error) {
	release, err := b.guard(ctx, store.Customers)
	if err != nil {
		return false, err
	}
	defer release()

	rows, err := b.store.Scan(ctx, store.Customers)
	if err != nil {
		return false, fmt.Errorf("scan customers: %w", err)
	}

	c.Name = strings.TrimSpace(c.Name)
	row, ok := findRow(rows, store.Headers(store.Customers)[store.CustomerName], c.Name)
	if !ok {
		if err := b.store.Append(ctx, store.Customers, store.EncodeCustomer(c)); err != nil {
			return false, fmt.Errorf("append customer: %w", err)
		}
		log.Info().Str("customer", c.Name).Msg("customer added")
		return true, nil
	}

	updates := []struct {
		column int
		value  string
	}{
		{store.CustomerPhone, c.Phone},
		{store.CustomerEmail, c.Email},
		{store.CustomerAddress, c.Address},
	}
	for _, u := range updates {
		if strings.TrimSpace(u.value) == "" {
			continue
		}
		if err := b.store.UpdateCell(ctx, store.Customers, row.Index, u.column, u.value); err != nil {
			return false, fmt.Errorf("update customer: %w", err)
		}
	}
	log.Info().Str("customer", c.Name).Msg("customer updated")
	return false, nil
}
