// Package app wires configuration, stores, providers and services for the
// server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/SscSPs/expense_tracker_bot/internal/adapters/database/pgsql"
	redisstore "github.com/SscSPs/expense_tracker_bot/internal/adapters/database/redis"
	"github.com/SscSPs/expense_tracker_bot/internal/adapters/ratesource"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/core/services"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/config"
	"github.com/SscSPs/expense_tracker_bot/pkg/database"
)

// App holds the wired dependencies. Close releases the connections it opened.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Services *portssvc.ServiceContainer
	Registry *prometheus.Registry

	closers []func()
}

// Options tune what New sets up.
type Options struct {
	// RunMigrations applies pending schema migrations before the services start.
	RunMigrations  bool
	MigrationsPath string
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.IsProduction {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New connects the stores and builds the service container.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	a.closers = append(a.closers, dbPool.Close)
	logger.Info("Database connection pool established.")

	if opts.RunMigrations {
		path := opts.MigrationsPath
		if path == "" {
			path = database.DefaultMigrationsPath
		}
		if err := database.RunMigrations(cfg.DatabaseURL, path, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	rateRepo, err := a.rateStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	repos := pgsql.NewRepositoryProvider(dbPool, rateRepo)

	client := ratesource.NewHTTPClient(cfg.RateHTTPTimeout)
	sources := services.RateSources{
		Fiat:   ratesource.NewExchangeRateAPI(client, cfg.FiatRatesURL),
		Crypto: ratesource.NewCoinGecko(client, cfg.CryptoPricesURL, cfg.CryptoAPIKey),
	}

	container, err := services.NewServiceContainer(cfg, repos, sources, a.Registry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build services: %w", err)
	}
	a.Services = container
	return a, nil
}

// rateStore returns nil when rates live in Postgres next to the ledger.
func (a *App) rateStore(ctx context.Context) (portsrepo.ExchangeRateRepositoryFacade, error) {
	if a.Config.RateStore != config.RateStoreRedis {
		return nil, nil
	}
	rdb, err := redisstore.NewClient(ctx, a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := rdb.Close(); err != nil {
			a.Logger.Error("Error closing redis client", slog.String("error", err.Error()))
		}
	})
	a.Logger.Info("Exchange rates stored in redis", slog.String("addr", a.Config.RedisAddr))
	return redisstore.NewExchangeRateRepository(rdb), nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
