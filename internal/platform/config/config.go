package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

const (
	RateStorePostgres = "postgres"
	RateStoreRedis    = "redis"

	defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	LogLevel      string

	// Rate store
	RateStore     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate engine
	RateStalenessThreshold  time.Duration
	RateServeStaleOnFailure bool
	RateRefreshInterval     time.Duration
	RateRefreshConcurrency  int
	RateRefreshTimeout      time.Duration
	RateHTTPTimeout         time.Duration
	FiatRatesURL            string
	CryptoPricesURL         string
	CryptoAPIKey            string
	Currencies              []string
	DefaultBaseCurrency     string

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string
}

// setDefaults registers every key with its default so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_STORE", RateStorePostgres)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_STALENESS_THRESHOLD", "1h")
	v.SetDefault("RATE_SERVE_STALE_ON_FAILURE", false)
	v.SetDefault("RATE_REFRESH_INTERVAL", "1h")
	v.SetDefault("RATE_REFRESH_CONCURRENCY", 4)
	v.SetDefault("RATE_REFRESH_TIMEOUT", "2m")
	v.SetDefault("RATE_HTTP_TIMEOUT", "10s")
	v.SetDefault("FIAT_RATES_URL", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("CRYPTO_PRICES_URL", "https://api.coingecko.com/api/v3/simple/price")
	v.SetDefault("CRYPTO_API_KEY", "")
	v.SetDefault("CURRENCIES", "")
	v.SetDefault("DEFAULT_BASE_CURRENCY", domain.AnchorCurrency)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds the configuration from an existing viper instance, e.g. one with CLI flags bound.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:             v.GetString("PGSQL_URL"),
		Port:                    v.GetString("PORT"),
		IsProduction:            v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:           v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		LogLevel:                strings.ToLower(v.GetString("LOG_LEVEL")),
		RateStore:               strings.ToLower(v.GetString("RATE_STORE")),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		RedisDB:                 v.GetInt("REDIS_DB"),
		RateStalenessThreshold:  v.GetDuration("RATE_STALENESS_THRESHOLD"),
		RateServeStaleOnFailure: v.GetBool("RATE_SERVE_STALE_ON_FAILURE"),
		RateRefreshInterval:     v.GetDuration("RATE_REFRESH_INTERVAL"),
		RateRefreshConcurrency:  v.GetInt("RATE_REFRESH_CONCURRENCY"),
		RateRefreshTimeout:      v.GetDuration("RATE_REFRESH_TIMEOUT"),
		RateHTTPTimeout:         v.GetDuration("RATE_HTTP_TIMEOUT"),
		FiatRatesURL:            v.GetString("FIAT_RATES_URL"),
		CryptoPricesURL:         v.GetString("CRYPTO_PRICES_URL"),
		CryptoAPIKey:            v.GetString("CRYPTO_API_KEY"),
		Currencies:              splitList(v.GetString("CURRENCIES"), true),
		DefaultBaseCurrency:     domain.NormalizeCode(v.GetString("DEFAULT_BASE_CURRENCY")),
		RateLimit:               v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:      splitList(v.GetString("CORS_ALLOWED_ORIGINS"), false),
	}

	if cfg.DatabaseURL == "" && cfg.RateStore == RateStorePostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.RateStore != RateStorePostgres && c.RateStore != RateStoreRedis {
		errs = append(errs, fmt.Errorf("RATE_STORE must be %q or %q, got %q", RateStorePostgres, RateStoreRedis, c.RateStore))
	}
	if c.RateStore == RateStoreRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when RATE_STORE=redis"))
	}
	if c.RateStalenessThreshold <= 0 {
		errs = append(errs, errors.New("RATE_STALENESS_THRESHOLD must be positive"))
	}
	if c.RateRefreshInterval < 0 {
		errs = append(errs, errors.New("RATE_REFRESH_INTERVAL cannot be negative"))
	}
	if c.RateRefreshConcurrency <= 0 {
		errs = append(errs, errors.New("RATE_REFRESH_CONCURRENCY must be positive"))
	}
	if c.RateRefreshTimeout <= 0 {
		errs = append(errs, errors.New("RATE_REFRESH_TIMEOUT must be positive"))
	}
	if c.RateHTTPTimeout <= 0 {
		errs = append(errs, errors.New("RATE_HTTP_TIMEOUT must be positive"))
	}

	table, err := c.CurrencyTable()
	if err != nil {
		errs = append(errs, fmt.Errorf("CURRENCIES: %w", err))
	} else if !table.Supports(c.DefaultBaseCurrency) {
		errs = append(errs, fmt.Errorf("DEFAULT_BASE_CURRENCY %q is not a supported currency", c.DefaultBaseCurrency))
	}

	return errors.Join(errs...)
}

// CurrencyTable returns the supported currency table, restricted to Currencies when set.
func (c *Config) CurrencyTable() (domain.CurrencyTable, error) {
	table := domain.DefaultCurrencyTable()
	if len(c.Currencies) == 0 {
		return table, nil
	}
	return table.Subset(c.Currencies)
}

func splitList(raw string, upper bool) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}
