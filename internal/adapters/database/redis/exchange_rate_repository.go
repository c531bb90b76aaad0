package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
)

const (
	keyPrefix   = "fxrate:v1"
	fieldRate   = "rate"
	fieldUpdate = "last_updated"
)

// RateKey formats the hash key of a pair, e.g. "fxrate:v1:USD:EUR".
func RateKey(from, to string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, strings.ToUpper(from), strings.ToUpper(to))
}

// PairsKey is the set of every stored pair member ("FROM:TO").
func PairsKey() string {
	return keyPrefix + ":pairs"
}

// ExchangeRateRepository keeps one hash per ordered pair.
type ExchangeRateRepository struct {
	client goredis.Cmdable
}

// NewExchangeRateRepository creates a repository on an existing client.
func NewExchangeRateRepository(client goredis.Cmdable) *ExchangeRateRepository {
	return &ExchangeRateRepository{client: client}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateRepository)(nil)

// SaveExchangeRate writes the hash and the pair index in one MULTI/EXEC.
func (r *ExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	from := strings.ToUpper(rate.FromCurrencyCode)
	to := strings.ToUpper(rate.ToCurrencyCode)
	if from == to {
		return apperrors.NewValidationError("from and to currencies cannot be the same")
	}

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, RateKey(from, to), encodeRate(rate))
		pipe.SAdd(ctx, PairsKey(), from+":"+to)
		return nil
	})
	if err != nil {
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return nil
}

// FindExchangeRate reads the hash of one pair.
func (r *ExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	from := strings.ToUpper(fromCurrencyCode)
	to := strings.ToUpper(toCurrencyCode)

	fields, err := r.client.HGetAll(ctx, RateKey(from, to)).Result()
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	if len(fields) == 0 {
		return nil, apperrors.NewNotFoundError("no exchange rate stored for " + from + " to " + to)
	}

	rate, err := decodeRate(from, to, fields)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode exchange rate", err)
	}
	return &rate, nil
}

// ListExchangeRates reads every pair named in the index set.
func (r *ExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	members, err := r.client.SMembers(ctx, PairsKey()).Result()
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange rate pairs", err)
	}
	sort.Strings(members)

	rates := make([]domain.ExchangeRate, 0, len(members))
	for _, member := range members {
		from, to, ok := strings.Cut(member, ":")
		if !ok {
			continue
		}
		rate, err := r.FindExchangeRate(ctx, from, to)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rate)
	}
	return rates, nil
}

func encodeRate(rate domain.ExchangeRate) map[string]any {
	return map[string]any{
		fieldRate:   rate.Rate.String(),
		fieldUpdate: rate.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
}

func decodeRate(from, to string, fields map[string]string) (domain.ExchangeRate, error) {
	value, err := decimal.NewFromString(fields[fieldRate])
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("invalid rate %q: %w", fields[fieldRate], err)
	}
	updated, err := time.Parse(time.RFC3339Nano, fields[fieldUpdate])
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("invalid last_updated %q: %w", fields[fieldUpdate], err)
	}
	return domain.ExchangeRate{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             value,
		LastUpdated:      updated,
	}, nil
}
