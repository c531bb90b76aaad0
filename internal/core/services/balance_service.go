package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
)

// balanceService implements the BalanceSvcFacade interface
type balanceService struct {
	BaseService
	ledgerRepo      portsrepo.LedgerRepositoryFacade
	rates           portssvc.ExchangeRateReaderSvc
	currencies      domain.CurrencyTable
	defaultCurrency string
}

// BalanceServiceOption is a functional option for configuring the balance service
type BalanceServiceOption func(*balanceService)

// WithDefaultBaseCurrency sets the base currency used when an owner has no usable preference.
func WithDefaultBaseCurrency(code string) BalanceServiceOption {
	return func(s *balanceService) {
		if code != "" {
			s.defaultCurrency = domain.NormalizeCode(code)
		}
	}
}

// NewBalanceService creates a new balance service with the provided options
func NewBalanceService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	rates portssvc.ExchangeRateReaderSvc,
	currencies domain.CurrencyTable,
	options ...BalanceServiceOption,
) portssvc.BalanceSvcFacade {
	svc := &balanceService{
		ledgerRepo:      ledgerRepo,
		rates:           rates,
		currencies:      currencies,
		defaultCurrency: domain.AnchorCurrency,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure balanceService implements the BalanceSvcFacade interface
var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// currencyTotals accumulates native sums for one currency group.
type currencyTotals struct {
	income   decimal.Decimal
	expenses decimal.Decimal
	count    int
}

// GetBalance aggregates every ledger entry of the owner into baseCurrency.
func (s *balanceService) GetBalance(ctx context.Context, ownerID, baseCurrency string) (*domain.BalanceResult, error) {
	base, err := s.resolveBaseCurrency(ctx, ownerID, baseCurrency)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.ListEntries(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", slog.String("owner_id", ownerID))
		return nil, fmt.Errorf("failed to list ledger entries for owner %s: %w", ownerID, err)
	}

	result := domain.NewEmptyBalance(base)
	if len(entries) == 0 {
		return &result, nil
	}

	groups := make(map[string]*currencyTotals)
	for _, entry := range entries {
		code := domain.NormalizeCode(entry.CurrencyCode)
		if code == "" {
			code = s.defaultCurrency
		}
		totals, ok := groups[code]
		if !ok {
			totals = &currencyTotals{income: decimal.Zero, expenses: decimal.Zero}
			groups[code] = totals
		}
		if entry.IsIncome {
			totals.income = totals.income.Add(entry.Amount)
		} else {
			totals.expenses = totals.expenses.Add(entry.Amount)
		}
		totals.count++
	}

	for code, totals := range groups {
		rate := s.groupRate(ctx, code, base)
		incomeInBase := totals.income.Mul(rate)
		expensesInBase := totals.expenses.Mul(rate)

		result.TotalIncome = result.TotalIncome.Add(incomeInBase)
		result.TotalExpenses = result.TotalExpenses.Add(expensesInBase)
		result.CurrencyBreakdown[code] = domain.CurrencyBalance{
			Income:           totals.income,
			Expenses:         totals.expenses,
			Balance:          totals.income.Sub(totals.expenses),
			IncomeInBase:     incomeInBase,
			ExpensesInBase:   expensesInBase,
			BalanceInBase:    incomeInBase.Sub(expensesInBase),
			TransactionCount: totals.count,
		}
	}
	result.Balance = result.TotalIncome.Sub(result.TotalExpenses)

	s.LogDebug(ctx, "Computed owner balance",
		slog.String("owner_id", ownerID),
		slog.String("currency", base),
		slog.Int("currencies", len(groups)),
		slog.Int("entries", len(entries)))

	return &result, nil
}

// FormatBalanceSummary computes the balance and renders it for the chat.
func (s *balanceService) FormatBalanceSummary(ctx context.Context, ownerID, baseCurrency, lang string) (string, error) {
	balance, err := s.GetBalance(ctx, ownerID, baseCurrency)
	if err != nil {
		return "", err
	}
	return s.RenderBalanceSummary(*balance, lang), nil
}

// RenderBalanceSummary renders an already computed balance.
func (s *balanceService) RenderBalanceSummary(balance domain.BalanceResult, lang string) string {
	return formatBalanceSummary(balance, s.currencies, lang)
}

// resolveBaseCurrency picks the requested currency, else the owner's preference, else the default.
func (s *balanceService) resolveBaseCurrency(ctx context.Context, ownerID, requested string) (string, error) {
	code := domain.NormalizeCode(requested)
	if code == "" {
		preferred, err := s.ledgerRepo.GetPreferredCurrency(ctx, ownerID)
		switch {
		case err != nil:
			s.LogWarn(ctx, "Could not load preferred currency, using default",
				slog.String("owner_id", ownerID),
				slog.String("currency", s.defaultCurrency),
				slog.String("error", err.Error()))
			code = s.defaultCurrency
		case !s.currencies.Supports(preferred):
			s.LogWarn(ctx, "Preferred currency is not supported, using default",
				slog.String("owner_id", ownerID),
				slog.String("preferred", preferred),
				slog.String("currency", s.defaultCurrency))
			code = s.defaultCurrency
		default:
			code = domain.NormalizeCode(preferred)
		}
	}

	if !s.currencies.Supports(code) {
		return "", apperrors.NewValidationError(fmt.Sprintf("unsupported base currency %q", code))
	}
	return code, nil
}

// groupRate resolves the rate of one currency group. It never fails: unknown
// currencies and rate errors degrade to 1 so a balance request always answers.
func (s *balanceService) groupRate(ctx context.Context, code, base string) decimal.Decimal {
	if code == base {
		return decimal.NewFromInt(1)
	}
	if !s.currencies.Supports(code) {
		s.LogWarn(ctx, "Ledger entries in unsupported currency, converting at 1",
			slog.String("from", code),
			slog.String("to", base))
		return decimal.NewFromInt(1)
	}
	rate, err := s.rates.GetRate(ctx, code, base)
	if err != nil {
		s.LogWarn(ctx, "Failed to resolve rate for balance, converting at 1",
			slog.String("from", code),
			slog.String("to", base),
			slog.String("error", err.Error()))
		return decimal.NewFromInt(1)
	}
	return rate
}
