package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository to the pool. rateRepo overrides the
// Postgres rate store when another backend is configured.
func NewRepositoryProvider(dbPool *pgxpool.Pool, rateRepo portsrepo.ExchangeRateRepositoryFacade) portsrepo.RepositoryProvider {
	if rateRepo == nil {
		rateRepo = NewPgxExchangeRateRepository(dbPool)
	}
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: rateRepo,
		LedgerRepo:       NewPgxLedgerRepository(dbPool),
	}
}
