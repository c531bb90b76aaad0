package ratesource

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/ports/providers"
)

// DefaultFiatRatesURL returns every fiat rate against USD in one response.
const DefaultFiatRatesURL = "https://api.exchangerate-api.com/v4/latest/USD"

// ExchangeRateAPI fetches the fiat rate table from exchangerate-api.com.
type ExchangeRateAPI struct {
	client *http.Client
	url    string
}

// NewExchangeRateAPI creates the fiat provider. An empty url selects DefaultFiatRatesURL.
func NewExchangeRateAPI(client *http.Client, url string) *ExchangeRateAPI {
	if url == "" {
		url = DefaultFiatRatesURL
	}
	return &ExchangeRateAPI{client: client, url: url}
}

var _ providers.FiatRateSource = (*ExchangeRateAPI)(nil)

type latestRatesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// LatestRates fetches the current table.
func (p *ExchangeRateAPI) LatestRates(ctx context.Context) (providers.FiatRateTable, error) {
	req, err := http.NewRequest(http.MethodGet, p.url, nil)
	if err != nil {
		return providers.FiatRateTable{}, fmt.Errorf("%w: invalid fiat rates url: %w", apperrors.ErrRateUnavailable, err)
	}

	var body latestRatesResponse
	if err := getJSON(ctx, p.client, req, &body); err != nil {
		return providers.FiatRateTable{}, err
	}
	if len(body.Rates) == 0 {
		return providers.FiatRateTable{}, fmt.Errorf("%w: fiat rates response has no rates", apperrors.ErrRateUnavailable)
	}

	table := providers.FiatRateTable{
		Base:  strings.ToUpper(body.Base),
		Rates: make(map[string]decimal.Decimal, len(body.Rates)),
	}
	if table.Base == "" {
		table.Base = "USD"
	}
	for code, rate := range body.Rates {
		table.Rates[strings.ToUpper(code)] = rate
	}
	return table, nil
}
