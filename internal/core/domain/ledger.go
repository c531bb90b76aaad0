package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a recorded transaction as seen by the balance aggregator.
// Amounts are always positive; direction comes from the category type.
type LedgerEntry struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	IsIncome     bool            `json:"isIncome"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

// CurrencyBalance holds the totals for one native currency, both natively and in the base currency.
type CurrencyBalance struct {
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Balance          decimal.Decimal `json:"balance"`
	IncomeInBase     decimal.Decimal `json:"incomeInBase"`
	ExpensesInBase   decimal.Decimal `json:"expensesInBase"`
	BalanceInBase    decimal.Decimal `json:"balanceInBase"`
	TransactionCount int             `json:"transactionCount"`
}

// BalanceResult is the all-time balance of an owner expressed in a base currency.
type BalanceResult struct {
	Currency          string                     `json:"currency"`
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpenses     decimal.Decimal            `json:"totalExpenses"`
	Balance           decimal.Decimal            `json:"balance"`
	CurrencyBreakdown map[string]CurrencyBalance `json:"currencyBreakdown"`
}

// NewEmptyBalance returns the zero balance in the given currency.
func NewEmptyBalance(currency string) BalanceResult {
	return BalanceResult{
		Currency:          currency,
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
		Balance:           decimal.Zero,
		CurrencyBreakdown: map[string]CurrencyBalance{},
	}
}
