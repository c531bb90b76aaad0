package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

// ExchangeRateResponse is a persisted rate as exposed by the API.
type ExchangeRateResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		FromCurrencyCode: rate.FromCurrencyCode,
		ToCurrencyCode:   rate.ToCurrencyCode,
		Rate:             rate.Rate,
		LastUpdated:      rate.LastUpdated,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to response DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i, rate := range rates {
		responses[i] = ToExchangeRateResponse(rate)
	}
	return responses
}

// RateQuoteResponse is the result of a single rate lookup.
type RateQuoteResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Source           string          `json:"source"`
	LastUpdated      *time.Time      `json:"lastUpdated,omitempty"`
}

// ToRateQuoteResponse converts a domain.RateQuote to RateQuoteResponse DTO
func ToRateQuoteResponse(q domain.RateQuote) RateQuoteResponse {
	resp := RateQuoteResponse{
		FromCurrencyCode: q.Pair.From,
		ToCurrencyCode:   q.Pair.To,
		Rate:             q.Rate,
		Source:           string(q.Source),
	}
	if !q.LastUpdated.IsZero() {
		updated := q.LastUpdated
		resp.LastUpdated = &updated
	}
	return resp
}

// ConvertRequest holds the query parameters of a conversion. Amount is parsed as a decimal by the handler.
type ConvertRequest struct {
	Amount string `form:"amount" binding:"required"`
	From   string          `form:"from" binding:"required,currency"`
	To     string          `form:"to" binding:"required,currency"`
}

// ConvertResponse is the converted amount together with the rate used.
type ConvertResponse struct {
	Amount           decimal.Decimal `json:"amount"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Source           string          `json:"source"`
	Converted        decimal.Decimal `json:"converted"`
}

// RefreshResponse reports one bulk refresh.
type RefreshResponse struct {
	Attempted  int      `json:"attempted"`
	Succeeded  int      `json:"succeeded"`
	Failed     []string `json:"failed"`
	DurationMS int64    `json:"durationMs"`
}

// ToRefreshResponse converts a domain.RefreshReport to RefreshResponse DTO
func ToRefreshResponse(r domain.RefreshReport) RefreshResponse {
	failed := make([]string, len(r.Failed))
	for i, p := range r.Failed {
		failed[i] = p.String()
	}
	return RefreshResponse{
		Attempted:  r.Attempted,
		Succeeded:  r.Succeeded,
		Failed:     failed,
		DurationMS: r.Duration.Milliseconds(),
	}
}
