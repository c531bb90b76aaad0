package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CurrencyClass selects which upstream provider family prices a currency.
type CurrencyClass string

const (
	Fiat   CurrencyClass = "fiat"
	Crypto CurrencyClass = "crypto"
)

// AnchorCurrency is the currency every provider table is expressed against.
const AnchorCurrency = "USD"

// Currency represents a supported currency in the domain.
type Currency struct {
	Code    string        `json:"code"`    // e.g., "USD", "USDT"
	Symbol  string        `json:"symbol"`  // e.g., "$"
	Name    string        `json:"name"`    // e.g., "US Dollar"
	Class   CurrencyClass `json:"class"`   // fiat or crypto
	AssetID string        `json:"assetID"` // crypto pricing provider id, empty for fiat
}

// IsCrypto reports whether the currency is priced by the crypto provider.
// Anything not explicitly classified as crypto is treated as fiat.
func (c Currency) IsCrypto() bool {
	return c.Class == Crypto
}

// DefaultCurrencies returns the built-in supported currency table.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Symbol: "$", Name: "US Dollar", Class: Fiat},
		{Code: "EUR", Symbol: "€", Name: "Euro", Class: Fiat},
		{Code: "UAH", Symbol: "₴", Name: "Ukrainian Hryvnia", Class: Fiat},
		{Code: "RUB", Symbol: "₽", Name: "Russian Ruble", Class: Fiat},
		{Code: "USDT", Symbol: "USDT", Name: "Tether", Class: Crypto, AssetID: "tether"},
		{Code: "ATOM", Symbol: "ATOM", Name: "Cosmos", Class: Crypto, AssetID: "cosmos"},
		{Code: "BTC", Symbol: "₿", Name: "Bitcoin", Class: Crypto, AssetID: "bitcoin"},
	}
}

// CurrencyTable is the fixed set of supported currencies keyed by code.
type CurrencyTable struct {
	byCode map[string]Currency
	codes  []string
}

// NewCurrencyTable builds a table from the given currencies. Codes are normalized to upper case.
func NewCurrencyTable(currencies []Currency) (CurrencyTable, error) {
	t := CurrencyTable{byCode: make(map[string]Currency, len(currencies))}
	for _, c := range currencies {
		c.Code = NormalizeCode(c.Code)
		if c.Code == "" {
			return CurrencyTable{}, fmt.Errorf("currency code cannot be empty")
		}
		if _, exists := t.byCode[c.Code]; exists {
			return CurrencyTable{}, fmt.Errorf("duplicate currency code %s", c.Code)
		}
		if c.IsCrypto() && c.AssetID == "" {
			return CurrencyTable{}, fmt.Errorf("crypto currency %s has no provider asset id", c.Code)
		}
		t.byCode[c.Code] = c
		t.codes = append(t.codes, c.Code)
	}
	sort.Strings(t.codes)
	return t, nil
}

// DefaultCurrencyTable returns the table built from DefaultCurrencies.
func DefaultCurrencyTable() CurrencyTable {
	t, err := NewCurrencyTable(DefaultCurrencies())
	if err != nil {
		panic(err)
	}
	return t
}

// Subset returns a table restricted to the given codes, keeping their definitions.
func (t CurrencyTable) Subset(codes []string) (CurrencyTable, error) {
	selected := make([]Currency, 0, len(codes))
	for _, code := range codes {
		c, ok := t.Lookup(code)
		if !ok {
			return CurrencyTable{}, fmt.Errorf("unknown currency %q", code)
		}
		selected = append(selected, c)
	}
	return NewCurrencyTable(selected)
}

// Lookup returns the currency for a code.
func (t CurrencyTable) Lookup(code string) (Currency, bool) {
	c, ok := t.byCode[NormalizeCode(code)]
	return c, ok
}

// Supports reports whether the code is in the table.
func (t CurrencyTable) Supports(code string) bool {
	_, ok := t.Lookup(code)
	return ok
}

// Codes returns the supported codes in sorted order.
func (t CurrencyTable) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Len returns the number of supported currencies.
func (t CurrencyTable) Len() int {
	return len(t.codes)
}

// Symbol returns the display symbol for a code, falling back to the code itself.
func (t CurrencyTable) Symbol(code string) string {
	if c, ok := t.Lookup(code); ok && c.Symbol != "" {
		return c.Symbol
	}
	return NormalizeCode(code)
}

// Pairs enumerates every ordered pair of distinct supported currencies.
func (t CurrencyTable) Pairs() []CurrencyPair {
	pairs := make([]CurrencyPair, 0, len(t.codes)*(len(t.codes)-1))
	for _, from := range t.codes {
		for _, to := range t.codes {
			if from != to {
				pairs = append(pairs, CurrencyPair{From: from, To: to})
			}
		}
	}
	return pairs
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
