package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/dto"
)

// balanceHandler handles HTTP requests for owner balances.
type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
}

func newBalanceHandler(bs portssvc.BalanceSvcFacade) *balanceHandler {
	return &balanceHandler{balanceService: bs}
}

// registerBalanceRoutes registers the balance routes nested under an owner.
func registerBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade) {
	h := newBalanceHandler(balanceService)

	owners := rg.Group("/owners/:ownerID")
	{
		owners.GET("/balance", h.getBalance)
		owners.GET("/balance/summary", h.getBalanceSummary)
	}
}

// getBalance godoc
// @Summary Get an owner's balance
// @Description Aggregates every ledger entry of the owner into one base currency
// @Tags balance
// @Produce  json
// @Param   ownerID path  string true  "Owner ID"
// @Param   base    query string false "Base currency; defaults to the owner's preferred currency"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Invalid base currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Security BearerAuth
// @Router /owners/{ownerID}/balance [get]
func (h *balanceHandler) getBalance(c *gin.Context) {
	ownerID := c.Param("ownerID")
	logger := requestLogger(c).With(slog.String("owner_id", ownerID))

	var query dto.BalanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for GetBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), ownerID, query.Base)
	if err != nil {
		respondError(c, logger, err, "Failed to compute balance")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponse(ownerID, *balance))
}

// getBalanceSummary godoc
// @Summary Get an owner's balance as chat text
// @Tags balance
// @Produce  json
// @Param   ownerID path  string true  "Owner ID"
// @Param   base    query string false "Base currency"
// @Param   lang    query string false "Language (en, ru)"
// @Success 200 {object} dto.BalanceSummaryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Security BearerAuth
// @Router /owners/{ownerID}/balance/summary [get]
func (h *balanceHandler) getBalanceSummary(c *gin.Context) {
	ownerID := c.Param("ownerID")
	logger := requestLogger(c).With(slog.String("owner_id", ownerID))

	var query dto.BalanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for GetBalanceSummary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	text, err := h.balanceService.FormatBalanceSummary(c.Request.Context(), ownerID, query.Base, query.Lang)
	if err != nil {
		respondError(c, logger, err, "Failed to compute balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceSummaryResponse{Text: text})
}
