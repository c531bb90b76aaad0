package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	"github.com/SscSPs/expense_tracker_bot/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/metrics"
)

const (
	DefaultStalenessThreshold = time.Hour
	DefaultRefreshConcurrency = 4
	DefaultRefreshTimeout     = 2 * time.Minute
)

// exchangeRateService resolves rates through the in-process cache, the rate store and the providers.
type exchangeRateService struct {
	BaseService
	rateRepo   portsrepo.ExchangeRateRepositoryFacade
	fiat       providers.FiatRateSource
	crypto     providers.CryptoPriceSource
	currencies domain.CurrencyTable
	cache      *RateCache
	metrics    *metrics.RateMetrics
	now        func() time.Time

	stalenessThreshold time.Duration
	refreshConcurrency int
	refreshTimeout     time.Duration
	serveStale         bool
}

// ExchangeRateServiceOption is a functional option for configuring the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithStalenessThreshold sets the maximum age of a stored rate that is served without a re-fetch.
func WithStalenessThreshold(d time.Duration) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		if d > 0 {
			s.stalenessThreshold = d
		}
	}
}

// WithClock overrides the time source used for freshness checks and record timestamps.
func WithClock(now func() time.Time) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRateCache injects the in-process cache, e.g. to share it with other components.
func WithRateCache(cache *RateCache) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithMetrics sets the collectors the service reports to.
func WithMetrics(m *metrics.RateMetrics) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.metrics = m
	}
}

// WithRefreshConcurrency caps the number of pairs resolved in parallel by RefreshAll.
func WithRefreshConcurrency(n int) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		if n > 0 {
			s.refreshConcurrency = n
		}
	}
}

// WithRefreshTimeout bounds the total wall time of RefreshAll.
func WithRefreshTimeout(d time.Duration) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// WithServeStaleOnFailure serves an expired stored rate instead of the neutral fallback
// when the provider cannot be reached.
func WithServeStaleOnFailure(enabled bool) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.serveStale = enabled
	}
}

// NewExchangeRateService creates a new exchange rate service with the provided options
func NewExchangeRateService(
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	fiat providers.FiatRateSource,
	crypto providers.CryptoPriceSource,
	currencies domain.CurrencyTable,
	options ...ExchangeRateServiceOption,
) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		rateRepo:           rateRepo,
		fiat:               fiat,
		crypto:             crypto,
		currencies:         currencies,
		now:                time.Now,
		stalenessThreshold: DefaultStalenessThreshold,
		refreshConcurrency: DefaultRefreshConcurrency,
		refreshTimeout:     DefaultRefreshTimeout,
	}

	for _, option := range options {
		option(svc)
	}
	if svc.cache == nil {
		svc.cache = NewRateCache(DefaultRateCacheSize)
	}

	return svc
}

// Ensure exchangeRateService implements the ExchangeRateSvcFacade interface
var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// ResolveRate implements the layered lookup: identity, memory, fresh store record, provider, fallback.
func (s *exchangeRateService) ResolveRate(ctx context.Context, fromCode, toCode string) (domain.RateQuote, error) {
	pair := domain.NewCurrencyPair(fromCode, toCode)
	if pair.IsIdentity() {
		return domain.RateQuote{Pair: pair, Rate: decimal.NewFromInt(1), Source: domain.SourceIdentity}, nil
	}

	from, to, err := s.lookupPair(pair)
	if err != nil {
		return domain.RateQuote{}, err
	}

	if rate, ok := s.cache.Get(pair); ok {
		s.metrics.ObserveLookup(string(domain.SourceMemory))
		return domain.RateQuote{Pair: pair, Rate: rate, Source: domain.SourceMemory}, nil
	}

	now := s.now()
	stored, storeErr := s.rateRepo.FindExchangeRate(ctx, pair.From, pair.To)
	switch {
	case storeErr == nil && stored != nil && stored.IsFresh(now, s.stalenessThreshold):
		s.remember(pair, stored.Rate)
		s.metrics.ObserveLookup(string(domain.SourceStore))
		return domain.RateQuote{Pair: pair, Rate: stored.Rate, Source: domain.SourceStore, LastUpdated: stored.LastUpdated}, nil
	case storeErr != nil:
		stored = nil
		if !errors.Is(storeErr, apperrors.ErrNotFound) {
			s.LogError(ctx, storeErr, "Failed to read stored exchange rate, treating as miss",
				slog.String("from", pair.From),
				slog.String("to", pair.To))
		}
	}

	rate, fetchErr := s.fetch(ctx, from, to)
	if fetchErr == nil {
		record := domain.ExchangeRate{
			FromCurrencyCode: pair.From,
			ToCurrencyCode:   pair.To,
			Rate:             rate,
			LastUpdated:      now,
		}
		if saveErr := s.rateRepo.SaveExchangeRate(ctx, record); saveErr != nil {
			// Not cached either, so the next lookup resolves again.
			s.LogError(ctx, saveErr, "Failed to persist exchange rate",
				slog.String("from", pair.From),
				slog.String("to", pair.To))
		} else {
			s.remember(pair, rate)
		}
		s.metrics.ObserveLookup(string(domain.SourceProvider))
		s.LogDebug(ctx, "Fetched exchange rate from provider",
			slog.String("from", pair.From),
			slog.String("to", pair.To),
			slog.String("rate", rate.String()))
		return domain.RateQuote{Pair: pair, Rate: rate, Source: domain.SourceProvider, LastUpdated: now}, nil
	}

	if s.serveStale && stored != nil {
		s.LogWarn(ctx, "Exchange rate provider failed, serving stale rate",
			slog.String("from", pair.From),
			slog.String("to", pair.To),
			slog.Time("last_updated", stored.LastUpdated),
			slog.String("error", fetchErr.Error()))
		s.metrics.ObserveLookup(string(domain.SourceStale))
		return domain.RateQuote{Pair: pair, Rate: stored.Rate, Source: domain.SourceStale, LastUpdated: stored.LastUpdated}, nil
	}

	s.LogWarn(ctx, "Exchange rate unavailable, using fallback rate 1",
		slog.String("from", pair.From),
		slog.String("to", pair.To),
		slog.String("error", fetchErr.Error()))
	s.metrics.ObserveLookup(string(domain.SourceFallback))
	return domain.RateQuote{Pair: pair, Rate: decimal.NewFromInt(1), Source: domain.SourceFallback}, nil
}

// GetRate returns only the multiplier of ResolveRate.
func (s *exchangeRateService) GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	quote, err := s.ResolveRate(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.Rate, nil
}

// Convert multiplies amount by the from->to rate. Same-currency conversions return amount untouched.
func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if domain.NormalizeCode(fromCode) == domain.NormalizeCode(toCode) {
		return amount, nil
	}
	rate, err := s.GetRate(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// ListRates returns every persisted rate.
func (s *exchangeRateService) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListExchangeRates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates")
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}

// RefreshAll drops and re-resolves every ordered pair of supported currencies.
// Pairs not reached before the refresh deadline are reported as failed.
func (s *exchangeRateService) RefreshAll(ctx context.Context) (domain.RefreshReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.RefreshReport{}, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	pairs := s.currencies.Pairs()
	refreshed := make([]bool, len(pairs))

	var g errgroup.Group
	g.SetLimit(s.refreshConcurrency)
	for i, pair := range pairs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			s.cache.Delete(pair)
			quote, err := s.ResolveRate(ctx, pair.From, pair.To)
			if err != nil {
				s.LogError(ctx, err, "Failed to refresh exchange rate",
					slog.String("from", pair.From),
					slog.String("to", pair.To))
				return nil
			}
			refreshed[i] = quote.Source != domain.SourceFallback && quote.Source != domain.SourceStale
			return nil
		})
	}
	// Workers never return errors; failures are collected per pair.
	_ = g.Wait()

	report := domain.RefreshReport{Attempted: len(pairs), Failed: []domain.CurrencyPair{}}
	for i, ok := range refreshed {
		if ok {
			report.Succeeded++
		} else {
			report.Failed = append(report.Failed, pairs[i])
		}
	}
	report.Duration = time.Since(start)

	s.metrics.ObserveRefresh(report.Succeeded, len(report.Failed), report.Duration)
	s.metrics.SetCacheEntries(s.cache.Len())
	s.LogInfo(ctx, "Exchange rate refresh finished",
		slog.Int("attempted", report.Attempted),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", len(report.Failed)),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// Invalidate drops every in-memory rate.
func (s *exchangeRateService) Invalidate() {
	s.cache.Purge()
	s.metrics.SetCacheEntries(0)
}

// InvalidatePair drops the in-memory rate of one pair.
func (s *exchangeRateService) InvalidatePair(fromCode, toCode string) {
	s.cache.Delete(domain.NewCurrencyPair(fromCode, toCode))
	s.metrics.SetCacheEntries(s.cache.Len())
}

func (s *exchangeRateService) remember(pair domain.CurrencyPair, rate decimal.Decimal) {
	s.cache.Set(pair, rate)
	s.metrics.SetCacheEntries(s.cache.Len())
}

func (s *exchangeRateService) lookupPair(pair domain.CurrencyPair) (domain.Currency, domain.Currency, error) {
	from, ok := s.currencies.Lookup(pair.From)
	if !ok {
		return domain.Currency{}, domain.Currency{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, pair.From)
	}
	to, ok := s.currencies.Lookup(pair.To)
	if !ok {
		return domain.Currency{}, domain.Currency{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, pair.To)
	}
	return from, to, nil
}

// fetch routes the pair to the fiat or crypto provider.
func (s *exchangeRateService) fetch(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	if !from.IsCrypto() && !to.IsCrypto() {
		if s.fiat == nil {
			return decimal.Zero, fmt.Errorf("%w: no fiat rate source configured", apperrors.ErrRateUnavailable)
		}
		table, err := s.fiat.LatestRates(ctx)
		s.metrics.ObserveProvider("fiat", err)
		if err != nil {
			return decimal.Zero, err
		}
		return deriveFiatRate(table, from.Code, to.Code)
	}

	if s.crypto == nil {
		return decimal.Zero, fmt.Errorf("%w: no crypto price source configured", apperrors.ErrRateUnavailable)
	}
	assetIDs, vs := cryptoPriceRequest(from, to)
	prices, err := s.crypto.Prices(ctx, assetIDs, vs)
	s.metrics.ObserveProvider("crypto", err)
	if err != nil {
		return decimal.Zero, err
	}
	return deriveCryptoRate(prices, from, to)
}
