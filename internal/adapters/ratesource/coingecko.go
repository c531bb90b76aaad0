package ratesource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/ports/providers"
)

// DefaultCryptoPricesURL is the CoinGecko simple price endpoint.
const DefaultCryptoPricesURL = "https://api.coingecko.com/api/v3/simple/price"

const coinGeckoAPIKeyHeader = "x-cg-demo-api-key"

// CoinGecko fetches crypto prices from the CoinGecko simple price API.
type CoinGecko struct {
	client *http.Client
	url    string
	apiKey string
}

// NewCoinGecko creates the crypto provider. An empty url selects DefaultCryptoPricesURL;
// apiKey is optional.
func NewCoinGecko(client *http.Client, url, apiKey string) *CoinGecko {
	if url == "" {
		url = DefaultCryptoPricesURL
	}
	return &CoinGecko{client: client, url: url, apiKey: apiKey}
}

var _ providers.CryptoPriceSource = (*CoinGecko)(nil)

// Prices returns prices keyed by asset id, then by lower-case quote currency.
func (p *CoinGecko) Prices(ctx context.Context, assetIDs []string, vsCurrencies []string) (map[string]map[string]decimal.Decimal, error) {
	if len(assetIDs) == 0 || len(vsCurrencies) == 0 {
		return nil, fmt.Errorf("%w: no assets or quote currencies requested", apperrors.ErrRateUnavailable)
	}

	endpoint, err := url.Parse(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid crypto prices url: %w", apperrors.ErrRateUnavailable, err)
	}
	q := endpoint.Query()
	q.Set("ids", strings.Join(assetIDs, ","))
	q.Set("vs_currencies", strings.ToLower(strings.Join(vsCurrencies, ",")))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRateUnavailable, err)
	}
	if p.apiKey != "" {
		req.Header.Set(coinGeckoAPIKeyHeader, p.apiKey)
	}

	var body map[string]map[string]decimal.Decimal
	if err := getJSON(ctx, p.client, req, &body); err != nil {
		return nil, err
	}
	return body, nil
}
