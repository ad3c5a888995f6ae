package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendMemory   = "memory"

	placeholderGroqKey = "your_groq_api_key_here"
	placeholderSheetID = "your_google_sheet_id_here"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	StoreBackend    string
	GoogleSheetID   string
	CredentialsFile string
	DatabaseURL     string
	SQLitePath      string
	MySQLDSN        string

	RedisAddr                 string
	RedisPassword             string
	RedisDB                   int
	ExtractionCacheTTLSeconds int

	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	DefaultGSTRate    decimal.Decimal
	Currency          string
	DateFormat        string
	PhoneRegion       string
	LowStockThreshold decimal.Decimal

	AuthSecret            string
	OwnerUsername         string
	OwnerPassword         string
	StaffUsername         string
	StaffPassword         string
	AccessTokenTTLMinutes int

	LogFormat     string
	LogLevel      string
	EnablePprof   bool
	EnableMetrics bool
}

// Load reads the environment, after merging a .env file from the working directory when
// one exists. Variables already set take precedence over the file.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, err := strconv.Atoi(getEnv("EXTRACTION_CACHE_TTL_SECONDS", "3600"))
	if err != nil || cacheTTL < 0 {
		cacheTTL = 3600
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	pprof, _ := strconv.ParseBool(getEnv("ENABLE_PPROF", "false"))
	metrics, _ := strconv.ParseBool(getEnv("ENABLE_METRICS", "false"))

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://127.0.0.1:3000")),

		GoogleSheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID")),
		CredentialsFile: getEnv("CREDENTIALS_FILE", "credentials.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getEnv("SQLITE_PATH", "data/vyapar.db"),
		MySQLDSN:        os.Getenv("MYSQL_DSN"),

		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:                   redisDB,
		ExtractionCacheTTLSeconds: cacheTTL,

		GroqAPIKey:  strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),

		DefaultGSTRate:    getDecimal("DEFAULT_GST_RATE", 18),
		Currency:          getEnv("CURRENCY", "₹"),
		DateFormat:        getEnv("DATE_FORMAT", "2006-01-02"),
		PhoneRegion:       strings.ToUpper(getEnv("PHONE_REGION", "IN")),
		LowStockThreshold: getDecimal("LOW_STOCK_THRESHOLD", 5),

		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		OwnerUsername:         getEnv("OWNER_USERNAME", "owner"),
		OwnerPassword:         os.Getenv("OWNER_PASSWORD"),
		StaffUsername:         os.Getenv("STAFF_USERNAME"),
		StaffPassword:         os.Getenv("STAFF_PASSWORD"),
		AccessTokenTTLMinutes: tokenTTL,

		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		EnablePprof:   pprof,
		EnableMetrics: metrics,
	}
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.defaultBackend()))

	return cfg
}

// defaultBackend prefers whatever storage is configured, falling back to memory.
func (c Config) defaultBackend() string {
	switch {
	case c.GoogleSheetID != "" && c.GoogleSheetID != placeholderSheetID:
		return BackendSheets
	case c.DatabaseURL != "":
		return BackendPostgres
	case c.MySQLDSN != "":
		return BackendMySQL
	default:
		return BackendMemory
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// HasLLM reports whether a usable model key is configured.
func (c Config) HasLLM() bool {
	return c.GroqAPIKey != "" && c.GroqAPIKey != placeholderGroqKey
}

// Warnings lists configuration problems that degrade the service without stopping it.
func (c Config) Warnings() []string {
	var warnings []string
	if !c.HasLLM() {
		warnings = append(warnings, "GROQ_API_KEY is not set, using the rule-based extractor and offline advice")
	}
	if c.StoreBackend == BackendSheets {
		if c.GoogleSheetID == "" || c.GoogleSheetID == placeholderSheetID {
			warnings = append(warnings, "GOOGLE_SHEET_ID is not set")
		}
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("credentials file %s not found", c.CredentialsFile))
		}
	}
	return warnings
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getDecimal(key string, fallback int64) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d.IsNegative() {
		return decimal.NewFromInt(fallback)
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
