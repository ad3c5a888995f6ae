// Package app wires configuration into a ready service for the server and seed commands.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/assistant"
	"vyapar/backend/internal/cache"
	"vyapar/backend/internal/config"
	"vyapar/backend/internal/ledger"
	"vyapar/backend/internal/service"
	"vyapar/backend/internal/store"
	"vyapar/backend/internal/store/gormdb"
	"vyapar/backend/internal/store/memory"
	pgstore "vyapar/backend/internal/store/postgres"
	sheetstore "vyapar/backend/internal/store/sheets"
)

const lockTTL = 10 * time.Second

// SetupLogging points the global logger at out, as console text for "human" and JSON
// otherwise.
func SetupLogging(format, level string, out io.Writer) {
	if format == "human" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(out).With().Timestamp().Logger()
}

type App struct {
	Service *service.Service
	Store   store.Store

	closers []func() error
}

// Build opens the configured store and optional Redis, then assembles the service. The
// caller must Close the returned App.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}

	s, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = s

	var locker ledger.Locker
	extractionCache := cache.ExtractionCache(cache.NoopExtractionCache{})
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using noop cache and in-process locking")
			_ = client.Close()
		} else {
			a.closers = append(a.closers, client.Close)
			extractionCache = cache.NewRedisExtractionCache(client)
			locker = cache.NewRedisLocker(client, lockTTL)
			log.Info().Str("addr", cfg.RedisAddr).Msg("cache: redis")
		}
	} else {
		log.Info().Msg("cache: noop")
	}

	var (
		extractor assistant.Extractor
		advisor   assistant.Advisor
	)
	if cfg.HasLLM() {
		llm := assistant.NewLLM(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
		extractor = assistant.NewLLMExtractor(llm)
		advisor = assistant.NewLLMAdvisor(llm, cfg.Currency)
		log.Info().Str("model", cfg.GroqModel).Msg("assistant: llm")
	} else {
		extractor = assistant.NewRulesExtractor()
		advisor = assistant.NewSummaryAdvisor(cfg.Currency)
		log.Info().Msg("assistant: rules")
	}
	extractor = assistant.NewCachedExtractor(extractor, extractionCache, time.Duration(cfg.ExtractionCacheTTLSeconds)*time.Second)

	a.Service = service.New(ledger.NewBook(s, locker), ledger.NewAggregator(s).WithDateLayout(cfg.DateFormat), extractor, advisor, service.Options{
		DefaultGSTRate:    cfg.DefaultGSTRate,
		DateFormat:        cfg.DateFormat,
		PhoneRegion:       cfg.PhoneRegion,
		LowStockThreshold: cfg.LowStockThreshold,
		Currency:          cfg.Currency,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		sh, err := sheetstore.New(ctx, cfg.GoogleSheetID, cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("connect to google sheets: %w", err)
		}
		if err := sh.EnsureHeaders(ctx); err != nil {
			return nil, fmt.Errorf("prepare sheet tabs: %w", err)
		}
		log.Info().Str("sheet", cfg.GoogleSheetID).Msg("store: google sheets")
		return sh, nil
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE_BACKEND=postgres needs DATABASE_URL")
		}
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		log.Info().Msg("store: postgres")
		return pg, nil
	case config.BackendSQLite:
		lite, err := gormdb.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, lite.Close)
		log.Info().Str("path", cfg.SQLitePath).Msg("store: sqlite")
		return lite, nil
	case config.BackendMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("STORE_BACKEND=mysql needs MYSQL_DSN")
		}
		my, err := gormdb.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("mysql unavailable: %w", err)
		}
		a.closers = append(a.closers, my.Close)
		log.Info().Msg("store: mysql")
		return my, nil
	case config.BackendMemory:
		log.Info().Msg("store: in-memory demo data")
		return memory.NewSeeded(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}
	a.closers = nil
}
