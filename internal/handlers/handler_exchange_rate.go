package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/dto"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := rg.Group("/rates")
	{
		rates.GET("", h.listExchangeRates)
		rates.GET("/:from/:to", h.getExchangeRate)
		rates.POST("/refresh", h.refreshExchangeRates)
		rates.DELETE("/cache", h.invalidateCache)
	}
	rg.GET("/convert", h.convert)
}

// listExchangeRates godoc
// @Summary List persisted exchange rates
// @Tags exchange rates
// @Produce  json
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list exchange rates"
// @Security BearerAuth
// @Router /rates [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := requestLogger(c)

	rates, err := h.exchangeRateService.ListRates(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// getExchangeRate godoc
// @Summary Get an exchange rate
// @Description Resolves the rate converting one unit of `from` into `to`, reporting which layer served it
// @Tags exchange rates
// @Produce  json
// @Param   from path string true "From Currency Code (e.g., USD)"
// @Param   to   path string true "To Currency Code (e.g., EUR)"
// @Success 200 {object} dto.RateQuoteResponse
// @Failure 400 {object} map[string]string "Unsupported currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to get exchange rate"
// @Security BearerAuth
// @Router /rates/{from}/{to} [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := requestLogger(c)
	from := c.Param("from")
	to := c.Param("to")

	quote, err := h.exchangeRateService.ResolveRate(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to get exchange rate")
		return
	}

	logger.Debug("Exchange rate resolved",
		slog.String("from", quote.Pair.From),
		slog.String("to", quote.Pair.To),
		slog.String("source", string(quote.Source)),
	)
	c.JSON(http.StatusOK, dto.ToRateQuoteResponse(quote))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Tags exchange rates
// @Produce  json
// @Param   amount query string true "Amount to convert"
// @Param   from   query string true "From Currency Code"
// @Param   to     query string true "To Currency Code"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to convert amount"
// @Security BearerAuth
// @Router /convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := requestLogger(c)
	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		logger.Warn("Invalid amount for Convert", slog.String("amount", req.Amount))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + req.Amount})
		return
	}

	// One resolution per request, so the reported rate is the one applied.
	quote, err := h.exchangeRateService.ResolveRate(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount")
		return
	}
	converted := amount
	if !quote.Pair.IsIdentity() {
		converted = amount.Mul(quote.Rate)
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:           amount,
		FromCurrencyCode: quote.Pair.From,
		ToCurrencyCode:   quote.Pair.To,
		Rate:             quote.Rate,
		Source:           string(quote.Source),
		Converted:        converted,
	})
}

// refreshExchangeRates godoc
// @Summary Refresh every supported pair
// @Description Re-fetches all pairs from the providers; per-pair failures are reported, not fatal
// @Tags exchange rates
// @Produce  json
// @Success 200 {object} dto.RefreshResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to refresh exchange rates"
// @Security BearerAuth
// @Router /rates/refresh [post]
func (h *exchangeRateHandler) refreshExchangeRates(c *gin.Context) {
	logger := requestLogger(c)

	report, err := h.exchangeRateService.RefreshAll(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to refresh exchange rates")
		return
	}

	logger.Info("Exchange rates refreshed",
		slog.Int("attempted", report.Attempted),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", len(report.Failed)),
	)
	c.JSON(http.StatusOK, dto.ToRefreshResponse(report))
}

// invalidateCache godoc
// @Summary Drop the in-memory rate cache
// @Tags exchange rates
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /rates/cache [delete]
func (h *exchangeRateHandler) invalidateCache(c *gin.Context) {
	h.exchangeRateService.Invalidate()
	requestLogger(c).Info("In-memory exchange rate cache invalidated")
	c.Status(http.StatusNoContent)
}
