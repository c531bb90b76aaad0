package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	"github.com/SscSPs/expense_tracker_bot/internal/core/ports/providers"
)

// rateDivisionPrecision is the number of decimal places kept when dividing rates.
const rateDivisionPrecision = 18

// deriveFiatRate computes from->to out of a table quoted against its base:
// rate = Rates[to] / Rates[from], where the base itself is 1.
func deriveFiatRate(table providers.FiatRateTable, from, to string) (decimal.Decimal, error) {
	vFrom, err := fiatValue(table, from)
	if err != nil {
		return decimal.Zero, err
	}
	vTo, err := fiatValue(table, to)
	if err != nil {
		return decimal.Zero, err
	}
	return vTo.DivRound(vFrom, rateDivisionPrecision), nil
}

func fiatValue(table providers.FiatRateTable, code string) (decimal.Decimal, error) {
	if strings.EqualFold(code, table.Base) {
		return decimal.NewFromInt(1), nil
	}
	v, ok := table.Rates[code]
	if !ok || !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: fiat table has no usable rate for %s", apperrors.ErrRateUnavailable, code)
	}
	return v, nil
}

// cryptoPriceRequest lists the asset ids and quote currencies a crypto pair needs.
func cryptoPriceRequest(from, to domain.Currency) (assetIDs, vs []string) {
	switch {
	case from.IsCrypto() && to.IsCrypto():
		return []string{from.AssetID, to.AssetID}, []string{strings.ToLower(domain.AnchorCurrency)}
	case from.IsCrypto():
		return []string{from.AssetID}, []string{strings.ToLower(to.Code)}
	default:
		return []string{to.AssetID}, []string{strings.ToLower(from.Code)}
	}
}

// deriveCryptoRate computes from->to when at least one side is crypto.
//   - crypto->fiat: price of from quoted in to
//   - fiat->crypto: 1 / price of to quoted in from
//   - crypto->crypto: price(from, USD) / price(to, USD)
func deriveCryptoRate(prices map[string]map[string]decimal.Decimal, from, to domain.Currency) (decimal.Decimal, error) {
	switch {
	case from.IsCrypto() && to.IsCrypto():
		anchor := strings.ToLower(domain.AnchorCurrency)
		fromUSD, err := cryptoPrice(prices, from.AssetID, anchor)
		if err != nil {
			return decimal.Zero, err
		}
		toUSD, err := cryptoPrice(prices, to.AssetID, anchor)
		if err != nil {
			return decimal.Zero, err
		}
		return fromUSD.DivRound(toUSD, rateDivisionPrecision), nil
	case from.IsCrypto():
		return cryptoPrice(prices, from.AssetID, strings.ToLower(to.Code))
	default:
		price, err := cryptoPrice(prices, to.AssetID, strings.ToLower(from.Code))
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(1).DivRound(price, rateDivisionPrecision), nil
	}
}

func cryptoPrice(prices map[string]map[string]decimal.Decimal, assetID, vs string) (decimal.Decimal, error) {
	p, ok := prices[assetID][vs]
	if !ok || !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no %s price for %s", apperrors.ErrRateUnavailable, vs, assetID)
	}
	return p, nil
}
