package services

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	"github.com/SscSPs/expense_tracker_bot/internal/i18n"
)

// formatBalanceSummary renders the headline balance, a status line and, when more
// than one currency is involved, the per-currency breakdown.
func formatBalanceSummary(balance domain.BalanceResult, currencies domain.CurrencyTable, lang string) string {
	tr := i18n.NewTranslator(lang)

	icon := "💰"
	if balance.Balance.IsNegative() {
		icon = "💸"
	}

	var b strings.Builder
	b.WriteString(tr.Sprintf("%s **%s**: %s %s\n",
		icon, tr.T(i18n.KeyBalance), currencies.Symbol(balance.Currency), money(tr, balance.Balance)))

	switch {
	case balance.Balance.IsPositive():
		b.WriteString(tr.T(i18n.KeyPositiveBalance))
	case balance.Balance.IsNegative():
		b.WriteString(tr.T(i18n.KeyNegativeBalance))
	default:
		b.WriteString(tr.T(i18n.KeyZeroBalance))
	}
	b.WriteString("\n")

	if len(balance.CurrencyBreakdown) > 1 {
		codes := make([]string, 0, len(balance.CurrencyBreakdown))
		for code := range balance.CurrencyBreakdown {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		b.WriteString("\n📊 **")
		b.WriteString(tr.T(i18n.KeyCurrencyBreakdown))
		b.WriteString("**:\n")
		for _, code := range codes {
			row := balance.CurrencyBreakdown[code]
			b.WriteString(tr.Sprintf("• %s %s (%d %s)\n",
				currencies.Symbol(code), money(tr, row.Balance), row.TransactionCount, tr.T(i18n.KeyTransactions)))
		}
	}

	return b.String()
}

// money rounds to cents only for display.
func money(tr i18n.Translator, amount decimal.Decimal) string {
	return tr.FormatFixed(amount.StringFixed(2))
}
