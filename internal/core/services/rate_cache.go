package services

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

// DefaultRateCacheSize bounds the in-process cache; the default table needs 42 entries.
const DefaultRateCacheSize = 1024

// RateCache is the process-wide in-memory rate map. Entries have no TTL and
// live until invalidated, evicted, or the process exits. Safe for concurrent use.
type RateCache struct {
	entries *lru.Cache[domain.CurrencyPair, decimal.Decimal]
}

// NewRateCache creates a cache holding at most size pairs.
// Non-positive sizes select DefaultRateCacheSize.
func NewRateCache(size int) *RateCache {
	if size <= 0 {
		size = DefaultRateCacheSize
	}
	// lru.New only fails for non-positive sizes.
	entries, _ := lru.New[domain.CurrencyPair, decimal.Decimal](size)
	return &RateCache{entries: entries}
}

func (c *RateCache) Get(pair domain.CurrencyPair) (decimal.Decimal, bool) {
	return c.entries.Get(pair)
}

func (c *RateCache) Set(pair domain.CurrencyPair, rate decimal.Decimal) {
	c.entries.Add(pair, rate)
}

func (c *RateCache) Delete(pair domain.CurrencyPair) {
	c.entries.Remove(pair)
}

// Purge drops every entry.
func (c *RateCache) Purge() {
	c.entries.Purge()
}

func (c *RateCache) Len() int {
	return c.entries.Len()
}
