package repositories

import (
	"context"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

// LedgerReader defines read operations over recorded transactions
type LedgerReader interface {
	// ListEntries retrieves every transaction of an owner joined with its category direction.
	ListEntries(ctx context.Context, ownerID string) ([]domain.LedgerEntry, error)
}

// OwnerReader defines read operations for owner preferences
type OwnerReader interface {
	// GetPreferredCurrency returns the owner's preferred base currency code.
	// Returns an error matching apperrors.ErrNotFound when the owner is unknown.
	GetPreferredCurrency(ctx context.Context, ownerID string) (string, error)
}

// LedgerRepositoryFacade combines the ledger and owner read interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	OwnerReader
}
