package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SscSPs/expense_tracker_bot/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/config"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/metrics"
)

// RateSources bundles the upstream providers the exchange rate service routes to.
type RateSources struct {
	Fiat   providers.FiatRateSource
	Crypto providers.CryptoPriceSource
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, sources RateSources, reg prometheus.Registerer) (*portssvc.ServiceContainer, error) {
	currencies, err := cfg.CurrencyTable()
	if err != nil {
		return nil, err
	}

	container := &portssvc.ServiceContainer{}

	options := []ExchangeRateServiceOption{
		WithStalenessThreshold(cfg.RateStalenessThreshold),
		WithRefreshConcurrency(cfg.RateRefreshConcurrency),
		WithRefreshTimeout(cfg.RateRefreshTimeout),
		WithServeStaleOnFailure(cfg.RateServeStaleOnFailure),
		WithRateCache(NewRateCache(DefaultRateCacheSize)),
	}
	if reg != nil {
		options = append(options, WithMetrics(metrics.NewRateMetrics(reg)))
	}
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, sources.Fiat, sources.Crypto, currencies, options...)

	container.Balance = NewBalanceService(
		repos.LedgerRepo,
		container.ExchangeRate,
		currencies,
		WithDefaultBaseCurrency(cfg.DefaultBaseCurrency),
	)

	return container, nil
}
