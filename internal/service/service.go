package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"

	"vyapar/backend/internal/assistant"
	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/ledger"
	"vyapar/backend/internal/xid"
)

const notUnderstood = "Could not understand your input. Please try again."

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	DefaultGSTRate    decimal.Decimal
	DateFormat        string
	PhoneRegion       string
	LowStockThreshold decimal.Decimal
	Currency          string
	Now               func() time.Time
}

type Service struct {
	book      *ledger.Book
	agg       *ledger.Aggregator
	extractor assistant.Extractor
	advisor   assistant.Advisor
	opts      Options
}

func New(book *ledger.Book, agg *ledger.Aggregator, extractor assistant.Extractor, advisor assistant.Advisor, opts Options) *Service {
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "IN"
	}
	if opts.Currency == "" {
		opts.Currency = "₹"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{book: book, agg: agg, extractor: extractor, advisor: advisor, opts: opts}
}

func (s *Service) defaults() domain.IntentDefaults {
	return domain.IntentDefaults{GSTRate: s.opts.DefaultGSTRate, PaymentMethod: domain.DefaultPaymentMethod}
}

func (s *Service) today() string {
	return s.opts.Now().Format(s.opts.DateFormat)
}

// resolveDate keeps a caller-supplied date when it matches the configured layout.
func (s *Service) resolveDate(given string) (string, error) {
	given = strings.TrimSpace(given)
	if given == "" {
		return s.today(), nil
	}
	if _, err := time.Parse(s.opts.DateFormat, given); err != nil {
		return "", domain.NewValidationError(fmt.Sprintf("Date must look like %s", s.opts.DateFormat))
	}
	return given, nil
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.Username
	}
	return ""
}

// Submit reads one free-text message and applies it to the ledger. Nothing is written
// unless the extraction validates.
func (s *Service) Submit(ctx context.Context, text string) (domain.SubmitResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.SubmitResult{}, domain.NewValidationError("Message is required")
	}
	id := xid.New("msg")

	ext, err := s.extractor.Extract(ctx, text)
	if err != nil {
		log.Info().Str("id", id).Err(err).Msg("message not understood")
		return domain.SubmitResult{}, domain.NewValidationError(notUnderstood)
	}
	intent, err := ext.ToIntent(s.defaults())
	if err != nil {
		return domain.SubmitResult{}, err
	}

	result := domain.SubmitResult{ID: id, Intent: intent.Kind()}
	switch in := intent.(type) {
	case domain.SaleIntent:
		receipt, err := s.recordSale(ctx, in, s.today())
		if err != nil {
			return domain.SubmitResult{}, err
		}
		result.Sale = receipt
	case domain.InventoryAddIntent:
		change, err := s.book.UpsertInventory(ctx, in.Item, in.Quantity, in.CostPrice)
		if err != nil {
			return domain.SubmitResult{}, err
		}
		result.Inventory = &change
	case domain.ExpenseIntent:
		rec, err := s.recordExpense(ctx, in, s.today())
		if err != nil {
			return domain.SubmitResult{}, err
		}
		result.Expense = &rec
	case domain.QueryIntent:
		answer, err := s.Insight(ctx, text)
		if err != nil {
			return domain.SubmitResult{}, err
		}
		result.Answer = answer
	}

	log.Info().Str("id", id).Str("intent", string(result.Intent)).Str("actor", actorName(ctx)).Msg("message processed")
	return result, nil
}

func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleReceipt, error) {
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}
	in, err := req.ToIntent(s.defaults())
	if err != nil {
		return nil, err
	}
	return s.recordSale(ctx, in, date)
}

// recordSale appends the sale first. Stock and customer follow-ups never undo it: a
// missing inventory item becomes a warning and a customer upsert failure is only logged.
func (s *Service) recordSale(ctx context.Context, in domain.SaleIntent, date string) (*domain.SaleReceipt, error) {
	sale := domain.SaleRecord{
		Date:         date,
		Item:         in.Item,
		Quantity:     in.Quantity,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Customer:     in.Customer,
		GSTRate:      in.GSTRate,
	}
	if err := s.book.AppendSale(ctx, sale); err != nil {
		return nil, err
	}

	receipt := &domain.SaleReceipt{
		Sale:        sale,
		Subtotal:    sale.Subtotal(),
		GSTAmount:   sale.GSTAmount(),
		TotalAmount: sale.TotalAmount(),
	}
	if sale.HasCost() {
		profit := sale.SellingPrice.Sub(sale.CostPrice).Mul(sale.Quantity)
		receipt.Profit = &profit
	}

	stock, err := s.book.DeductStock(ctx, sale.Item, sale.Quantity)
	switch {
	case errors.Is(err, ledger.ErrItemNotFound):
		receipt.Warnings = append(receipt.Warnings, fmt.Sprintf("%s is not in inventory, stock was not updated", sale.Item))
	case err != nil:
		log.Warn().Err(err).Str("item", sale.Item).Msg("stock deduction failed after sale")
		receipt.Warnings = append(receipt.Warnings, "sale saved but stock could not be updated")
	default:
		receipt.StockAfter = &stock
		if stock.IsNegative() {
			receipt.Warnings = append(receipt.Warnings, fmt.Sprintf("stock for %s is now %s", sale.Item, stock))
		}
	}

	if sale.Customer != "" {
		if _, err := s.book.UpsertCustomer(ctx, domain.CustomerRecord{Name: sale.Customer}); err != nil {
			log.Warn().Err(err).Str("customer", sale.Customer).Msg("customer upsert failed after sale")
		}
	}
	return receipt, nil
}

func (s *Service) AddInventory(ctx context.Context, req domain.InventoryRequest) (domain.InventoryChange, error) {
	in, err := req.ToIntent()
	if err != nil {
		return domain.InventoryChange{}, err
	}
	return s.book.UpsertInventory(ctx, in.Item, in.Quantity, in.CostPrice)
}

func (s *Service) RecordExpense(ctx context.Context, req domain.ExpenseRequest) (domain.ExpenseRecord, error) {
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	in, err := req.ToIntent(s.defaults())
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	return s.recordExpense(ctx, in, date)
}

func (s *Service) recordExpense(ctx context.Context, in domain.ExpenseIntent, date string) (domain.ExpenseRecord, error) {
	rec := domain.ExpenseRecord{
		Date:          date,
		Category:      in.Category,
		Description:   in.Description,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.book.AppendExpense(ctx, rec); err != nil {
		return domain.ExpenseRecord{}, err
	}
	return rec, nil
}

// SaveCustomer upserts by name. A supplied phone must be valid for the configured region
// and is stored in E.164 form.
func (s *Service) SaveCustomer(ctx context.Context, req domain.CustomerRequest) (domain.CustomerRecord, bool, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := domain.Validate(req); err != nil {
		return domain.CustomerRecord{}, false, err
	}

	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return domain.CustomerRecord{}, false, err
	}
	rec := domain.CustomerRecord{
		Name:    req.Name,
		Phone:   phone,
		Email:   req.Email,
		Address: strings.TrimSpace(req.Address),
	}
	created, err := s.book.UpsertCustomer(ctx, rec)
	if err != nil {
		return domain.CustomerRecord{}, false, err
	}
	return rec, created, nil
}

func (s *Service) normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, s.opts.PhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return "", domain.NewValidationError("Valid phone number is required")
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
