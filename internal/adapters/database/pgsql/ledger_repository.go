package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
)

// PgxLedgerRepository reads transactions and owner preferences written by the bot.
type PgxLedgerRepository struct {
	BaseRepository
}

// NewPgxLedgerRepository creates a new PgxLedgerRepository.
func NewPgxLedgerRepository(db DBTX) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// ListEntries returns every transaction of the owner; the category type decides the direction.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, ownerID string) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT t.amount, t.currency, c.category_type = 'income', t.occurred_at
		FROM transactions t
		JOIN categories c ON c.category_id = t.category_id
		WHERE t.owner_id = $1
		ORDER BY t.occurred_at`,
		ownerID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list ledger entries", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.Amount, &e.CurrencyCode, &e.IsIncome, &e.OccurredAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entries", err)
	}
	return entries, nil
}

// GetPreferredCurrency returns the owner's configured base currency.
func (r *PgxLedgerRepository) GetPreferredCurrency(ctx context.Context, ownerID string) (string, error) {
	var currency string
	err := r.Pool.QueryRow(ctx,
		`SELECT preferred_currency FROM owners WHERE owner_id = $1`,
		ownerID,
	).Scan(&currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("owner " + ownerID + " not found")
		}
		return "", apperrors.NewAppError(500, "failed to get preferred currency", err)
	}
	return currency, nil
}
