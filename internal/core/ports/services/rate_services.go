package services

import (
	"context"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for exchange rates
type ExchangeRateReaderSvc interface {
	// ResolveRate walks identity, memory, store and provider layers and reports where the rate came from.
	ResolveRate(ctx context.Context, fromCode, toCode string) (domain.RateQuote, error)

	// GetRate returns the multiplier converting fromCode into toCode.
	// Provider failures degrade to a rate of 1; only unsupported codes return an error.
	GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)

	// Convert returns amount expressed in toCode.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)

	// ListRates returns every rate currently persisted in the store.
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines cache maintenance operations
type ExchangeRateWriterSvc interface {
	// RefreshAll re-fetches every supported pair, bounded in concurrency and total time.
	// Per-pair failures are reported, not returned; the error is only set when ctx is already done.
	RefreshAll(ctx context.Context) (domain.RefreshReport, error)

	// Invalidate drops every in-memory rate. Persisted rates are kept.
	Invalidate()

	// InvalidatePair drops the in-memory rate of one pair.
	InvalidatePair(fromCode, toCode string)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
