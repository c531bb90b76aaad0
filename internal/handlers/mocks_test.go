package handlers_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) ResolveRate(ctx context.Context, from, to string) (domain.RateQuote, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(domain.RateQuote), args.Error(1)
}

func (m *MockExchangeRateService) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExchangeRateService) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) RefreshAll(ctx context.Context) (domain.RefreshReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RefreshReport), args.Error(1)
}

func (m *MockExchangeRateService) Invalidate() {
	m.Called()
}

func (m *MockExchangeRateService) InvalidatePair(from, to string) {
	m.Called(from, to)
}

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalance(ctx context.Context, ownerID, base string) (*domain.BalanceResult, error) {
	args := m.Called(ctx, ownerID, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceResult), args.Error(1)
}

func (m *MockBalanceService) FormatBalanceSummary(ctx context.Context, ownerID, base, lang string) (string, error) {
	args := m.Called(ctx, ownerID, base, lang)
	return args.String(0), args.Error(1)
}

func (m *MockBalanceService) RenderBalanceSummary(balance domain.BalanceResult, lang string) string {
	args := m.Called(balance, lang)
	return args.String(0)
}
