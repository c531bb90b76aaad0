package pgsql

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
)

// PgxExchangeRateRepository stores one rate row per ordered currency pair.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db DBTX) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// SaveExchangeRate upserts the rate for its pair.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	from := strings.ToUpper(rate.FromCurrencyCode)
	to := strings.ToUpper(rate.ToCurrencyCode)
	if from == to {
		return apperrors.NewValidationError("from and to currencies cannot be the same")
	}

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_currency, to_currency)
		DO UPDATE SET rate = EXCLUDED.rate, last_updated = EXCLUDED.last_updated`,
		from, to, rate.Rate, rate.LastUpdated.UTC(),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return nil
}

// FindExchangeRate retrieves the stored rate of an ordered pair.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	from := strings.ToUpper(fromCurrencyCode)
	to := strings.ToUpper(toCurrencyCode)

	var rate domain.ExchangeRate
	err := r.Pool.QueryRow(ctx, `
		SELECT from_currency, to_currency, rate, last_updated
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2`,
		from, to,
	).Scan(&rate.FromCurrencyCode, &rate.ToCurrencyCode, &rate.Rate, &rate.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no exchange rate stored for " + from + " to " + to)
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	return &rate, nil
}

// ListExchangeRates retrieves every stored rate ordered by pair.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT from_currency, to_currency, rate, last_updated
		FROM exchange_rates
		ORDER BY from_currency, to_currency`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		var rate domain.ExchangeRate
		if err := rows.Scan(&rate.FromCurrencyCode, &rate.ToCurrencyCode, &rate.Rate, &rate.LastUpdated); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rates", err)
	}
	return rates, nil
}
