package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	"github.com/SscSPs/expense_tracker_bot/internal/core/ports/providers"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/core/services"
	"github.com/SscSPs/expense_tracker_bot/internal/dto"
	"github.com/SscSPs/expense_tracker_bot/internal/handlers"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/config"
)

// memoryRateRepo is an in-memory rate store.
type memoryRateRepo struct {
	mu    sync.Mutex
	rates map[domain.CurrencyPair]domain.ExchangeRate
}

func (r *memoryRateRepo) FindExchangeRate(_ context.Context, from, to string) (*domain.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.rates[domain.NewCurrencyPair(from, to)]
	if !ok {
		return nil, apperrors.NewNotFoundError("no rate")
	}
	return &rate, nil
}

func (r *memoryRateRepo) ListExchangeRates(context.Context) ([]domain.ExchangeRate, error) {
	return nil, nil
}

func (r *memoryRateRepo) SaveExchangeRate(_ context.Context, rate domain.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[rate.Pair()] = rate
	return nil
}

// flakyFiatSource fails its first call and serves a fixed table afterwards.
type flakyFiatSource struct {
	mu    sync.Mutex
	calls int
}

func (s *flakyFiatSource) LatestRates(context.Context) (providers.FiatRateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls == 1 {
		return providers.FiatRateTable{}, errors.New("upstream timeout")
	}
	return providers.FiatRateTable{
		Base:  "USD",
		Rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(1), "EUR": decimal.RequireFromString("0.9")},
	}, nil
}

func (s *flakyFiatSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestConvert_AppliesTheReportedRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "convert-test-secret"

	fiat := &flakyFiatSource{}
	repo := &memoryRateRepo{rates: map[domain.CurrencyPair]domain.ExchangeRate{}}
	rates := services.NewExchangeRateService(repo, fiat, nil, domain.DefaultCurrencyTable())

	router := gin.New()
	handlers.RegisterRoutes(router, &config.Config{JWTSecret: secret},
		&portssvc.ServiceContainer{ExchangeRate: rates}, nil, nil)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "chat-bot",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	convert := func() dto.ConvertResponse {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/convert?amount=100&from=USD&to=EUR", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ConvertResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	// Provider down: the neutral rate is both reported and applied.
	first := convert()
	assert.Equal(t, 1, fiat.Calls())
	assert.Equal(t, "fallback", first.Source)
	assert.True(t, first.Rate.Equal(decimal.NewFromInt(1)))
	assert.True(t, first.Converted.Equal(first.Amount.Mul(first.Rate)), "converted %s at rate %s", first.Converted, first.Rate)

	// Provider back: one more call, and the amount matches the fetched rate.
	second := convert()
	assert.Equal(t, 2, fiat.Calls())
	assert.Equal(t, "provider", second.Source)
	assert.True(t, second.Rate.Equal(decimal.RequireFromString("0.9")))
	assert.True(t, second.Converted.Equal(decimal.NewFromInt(90)), "converted %s", second.Converted)

	// Now cached: no provider traffic at all.
	third := convert()
	assert.Equal(t, 2, fiat.Calls())
	assert.Equal(t, "memory", third.Source)
	assert.True(t, third.Converted.Equal(decimal.NewFromInt(90)))
}
