package dto

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

// BalanceQuery holds the optional query parameters of the balance endpoints.
type BalanceQuery struct {
	Base string `form:"base" binding:"omitempty,currency"`
	Lang string `form:"lang" binding:"omitempty,max=35"`
}

// CurrencyBalanceResponse is one row of the per-currency breakdown.
type CurrencyBalanceResponse struct {
	CurrencyCode     string          `json:"currencyCode"`
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Balance          decimal.Decimal `json:"balance"`
	IncomeInBase     decimal.Decimal `json:"incomeInBase"`
	ExpensesInBase   decimal.Decimal `json:"expensesInBase"`
	BalanceInBase    decimal.Decimal `json:"balanceInBase"`
	TransactionCount int             `json:"transactionCount"`
}

// BalanceResponse is an owner's balance in a base currency.
type BalanceResponse struct {
	OwnerID           string                    `json:"ownerID"`
	Currency          string                    `json:"currency"`
	TotalIncome       decimal.Decimal           `json:"totalIncome"`
	TotalExpenses     decimal.Decimal           `json:"totalExpenses"`
	Balance           decimal.Decimal           `json:"balance"`
	CurrencyBreakdown []CurrencyBalanceResponse `json:"currencyBreakdown"`
}

// ToBalanceResponse converts a domain.BalanceResult to BalanceResponse DTO, breakdown sorted by code.
func ToBalanceResponse(ownerID string, b domain.BalanceResult) BalanceResponse {
	codes := make([]string, 0, len(b.CurrencyBreakdown))
	for code := range b.CurrencyBreakdown {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]CurrencyBalanceResponse, 0, len(codes))
	for _, code := range codes {
		row := b.CurrencyBreakdown[code]
		rows = append(rows, CurrencyBalanceResponse{
			CurrencyCode:     code,
			Income:           row.Income,
			Expenses:         row.Expenses,
			Balance:          row.Balance,
			IncomeInBase:     row.IncomeInBase,
			ExpensesInBase:   row.ExpensesInBase,
			BalanceInBase:    row.BalanceInBase,
			TransactionCount: row.TransactionCount,
		})
	}

	return BalanceResponse{
		OwnerID:           ownerID,
		Currency:          b.Currency,
		TotalIncome:       b.TotalIncome,
		TotalExpenses:     b.TotalExpenses,
		Balance:           b.Balance,
		CurrencyBreakdown: rows,
	}
}

// BalanceSummaryResponse carries the rendered chat text.
type BalanceSummaryResponse struct {
	Text string `json:"text"`
}
