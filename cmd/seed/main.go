package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/app"
	"vyapar/backend/internal/bulk"
	"vyapar/backend/internal/config"
)

func main() {
	file := flag.String("file", "", "xlsx workbook to load instead of the built-in sample month")
	pace := flag.Duration("pace", 500*time.Millisecond, "pause after every write")
	backoff := flag.Duration("backoff", 2*time.Second, "wait before retrying a failed write")
	attempts := flag.Int("attempts", 3, "attempts per record")
	flag.Parse()

	cfg := config.Load()
	app.SetupLogging(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(*file, cfg.DateFormat)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("cannot read catalog")
	}

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot start")
	}
	defer a.Close()

	loader := bulk.NewLoader(a.Service, bulk.Options{Pace: *pace, Backoff: *backoff, MaxAttempts: *attempts})
	report, err := loader.Load(ctx, catalog)
	if err != nil {
		log.Error().Err(err).Int("loaded", report.Total()).Msg("load interrupted")
		return
	}
	for _, w := range report.Warnings {
		log.Warn().Msg(w)
	}

	st, err := a.Service.Statement(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cannot read summary")
		return
	}
	log.Info().
		Str("revenue", st.Revenue.StringFixed(2)).
		Str("cogs", st.COGS.StringFixed(2)).
		Str("gross_profit", st.GrossProfit.StringFixed(2)).
		Str("expenses", st.OperatingExpenses.StringFixed(2)).
		Str("net_profit", st.NetProfit.StringFixed(2)).
		Str("gross_margin", st.GrossMargin.String()+"%").
		Str("net_margin", st.NetMargin.String()+"%").
		Int("failed", len(report.Failed)).
		Msg("ledger summary")
}

func loadCatalog(path, dateFormat string) (bulk.Catalog, error) {
	if path == "" {
		return bulk.DefaultCatalog(time.Now(), dateFormat), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return bulk.Catalog{}, err
	}
	defer f.Close()
	return bulk.ReadWorkbook(f)
}
