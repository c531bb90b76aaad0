package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPair is a directed conversion from one currency into another.
type CurrencyPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewCurrencyPair builds a pair from raw codes.
func NewCurrencyPair(from, to string) CurrencyPair {
	return CurrencyPair{From: NormalizeCode(from), To: NormalizeCode(to)}
}

// Key returns the storage key of the pair, e.g. "USD_TO_EUR".
func (p CurrencyPair) Key() string {
	return p.From + "_TO_" + p.To
}

// Reversed returns the pair in the opposite direction.
func (p CurrencyPair) Reversed() CurrencyPair {
	return CurrencyPair{From: p.To, To: p.From}
}

// IsIdentity reports whether both sides are the same currency.
func (p CurrencyPair) IsIdentity() bool {
	return p.From == p.To
}

func (p CurrencyPair) String() string {
	return p.From + "->" + p.To
}

// ExchangeRate stores the conversion rate for one ordered currency pair.
// There is one record per pair; a new fetch overwrites it.
type ExchangeRate struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"` // amount_in_to = amount_in_from * rate
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// Pair returns the currency pair of the rate.
func (r ExchangeRate) Pair() CurrencyPair {
	return CurrencyPair{From: r.FromCurrencyCode, To: r.ToCurrencyCode}
}

// IsFresh reports whether the rate is younger than threshold at now.
func (r ExchangeRate) IsFresh(now time.Time, threshold time.Duration) bool {
	if r.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(r.LastUpdated) < threshold
}

// RateSource names the layer a rate was resolved from.
type RateSource string

const (
	SourceIdentity RateSource = "identity"
	SourceMemory   RateSource = "memory"
	SourceStore    RateSource = "store"
	SourceProvider RateSource = "provider"
	SourceStale    RateSource = "stale"
	SourceFallback RateSource = "fallback"
)

// RateQuote is the outcome of resolving a rate through the cache layers.
type RateQuote struct {
	Pair        CurrencyPair    `json:"pair"`
	Rate        decimal.Decimal `json:"rate"`
	Source      RateSource      `json:"source"`
	LastUpdated time.Time       `json:"lastUpdated,omitempty"`
}

// IsFallback reports whether the quote is the neutral rate used when nothing could be resolved.
func (q RateQuote) IsFallback() bool {
	return q.Source == SourceFallback
}

// RefreshReport summarizes one bulk refresh over all currency pairs.
type RefreshReport struct {
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failed    []CurrencyPair `json:"failed"`
	Duration  time.Duration  `json:"duration"`
}
