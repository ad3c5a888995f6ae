package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/domain"
)

// Ledger is the subset of the application service the loader writes through.
type Ledger interface {
	AddInventory(ctx context.Context, req domain.InventoryRequest) (domain.InventoryChange, error)
	SaveCustomer(ctx context.Context, req domain.CustomerRequest) (domain.CustomerRecord, bool, error)
	RecordExpense(ctx context.Context, req domain.ExpenseRequest) (domain.ExpenseRecord, error)
	RecordSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleReceipt, error)
}

type Options struct {
	// Pace is the pause after every successful write.
	Pace        time.Duration
	Backoff     time.Duration
	MaxAttempts int
	Sleep       SleepFunc
}

func DefaultOptions() Options {
	return Options{
		Pace:        500 * time.Millisecond,
		Backoff:     2 * time.Second,
		MaxAttempts: 3,
	}
}

type Report struct {
	Inventory int      `json:"inventory"`
	Customers int      `json:"customers"`
	Expenses  int      `json:"expenses"`
	Sales     int      `json:"sales"`
	Failed    []string `json:"failed,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

func (r Report) Total() int {
	return r.Inventory + r.Customers + r.Expenses + r.Sales
}

type Loader struct {
	ledger Ledger
	opts   Options
}

func NewLoader(ledger Ledger, opts Options) *Loader {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Loader{ledger: ledger, opts: opts}
}

// Load writes inventory, customers, expenses and then sales, in catalog order. A record
// that still fails after the last attempt is reported and skipped; only cancellation
// stops the run.
func (l *Loader) Load(ctx context.Context, cat Catalog) (Report, error) {
	var report Report

	for i, req := range cat.Inventory {
		ok, err := l.write(ctx, &report, fmt.Sprintf("inventory %d %s", i+1, req.Item), func(ctx context.Context) error {
			_, err := l.ledger.AddInventory(ctx, req)
			return err
		})
		if ok {
			report.Inventory++
		}
		if err != nil {
			return report, err
		}
	}

	for i, req := range cat.Customers {
		ok, err := l.write(ctx, &report, fmt.Sprintf("customer %d %s", i+1, req.Name), func(ctx context.Context) error {
			_, _, err := l.ledger.SaveCustomer(ctx, req)
			return err
		})
		if ok {
			report.Customers++
		}
		if err != nil {
			return report, err
		}
	}

	for i, req := range cat.Expenses {
		ok, err := l.write(ctx, &report, fmt.Sprintf("expense %d %s", i+1, req.Description), func(ctx context.Context) error {
			_, err := l.ledger.RecordExpense(ctx, req)
			return err
		})
		if ok {
			report.Expenses++
		}
		if err != nil {
			return report, err
		}
	}

	for i, req := range cat.Sales {
		var receipt *domain.SaleReceipt
		ok, err := l.write(ctx, &report, fmt.Sprintf("sale %d %s", i+1, req.Item), func(ctx context.Context) error {
			var err error
			receipt, err = l.ledger.RecordSale(ctx, req)
			return err
		})
		if ok {
			report.Sales++
			report.Warnings = append(report.Warnings, receipt.Warnings...)
		}
		if err != nil {
			return report, err
		}
	}

	log.Info().
		Int("inventory", report.Inventory).
		Int("customers", report.Customers).
		Int("expenses", report.Expenses).
		Int("sales", report.Sales).
		Int("failed", len(report.Failed)).
		Msg("bulk load finished")
	return report, nil
}

// write retries one record and paces after success. The returned error is non-nil only
// when ctx is done.
func (l *Loader) write(ctx context.Context, report *Report, label string, fn func(context.Context) error) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := Retry(ctx, l.opts.MaxAttempts, l.opts.Backoff, l.opts.Sleep, label, fn); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Error().Err(err).Str("record", label).Msg("record not loaded")
		report.Failed = append(report.Failed, fmt.Sprintf("%s: %v", label, err))
		return false, nil
	}
	log.Debug().Str("record", label).Msg("record loaded")
	if err := l.opts.Sleep(ctx, l.opts.Pace); err != nil {
		return true, err
	}
	return true, nil
}
