package providers

import (
	"context"

	"github.com/shopspring/decimal"
)

// FiatRateTable is a snapshot of fiat rates quoted against Base:
// one unit of Base buys Rates[code] units of code.
type FiatRateTable struct {
	Base  string
	Rates map[string]decimal.Decimal
}

// FiatRateSource fetches the latest fiat rate table.
type FiatRateSource interface {
	LatestRates(ctx context.Context) (FiatRateTable, error)
}

// CryptoPriceSource fetches crypto prices keyed by provider asset id, then by quote currency code (lower case).
type CryptoPriceSource interface {
	Prices(ctx context.Context, assetIDs []string, vsCurrencies []string) (map[string]map[string]decimal.Decimal, error)
}
