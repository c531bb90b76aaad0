package services

import (
	"context"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

// BalanceSvcFacade defines operations for aggregating an owner's multi-currency ledger
type BalanceSvcFacade interface {
	// GetBalance computes the all-time balance of an owner in baseCurrency.
	// An empty baseCurrency selects the owner's preferred currency.
	GetBalance(ctx context.Context, ownerID, baseCurrency string) (*domain.BalanceResult, error)

	// FormatBalanceSummary computes the balance and renders it as chat text in lang.
	FormatBalanceSummary(ctx context.Context, ownerID, baseCurrency, lang string) (string, error)

	// RenderBalanceSummary renders an already computed balance as chat text in lang.
	RenderBalanceSummary(balance domain.BalanceResult, lang string) string
}
