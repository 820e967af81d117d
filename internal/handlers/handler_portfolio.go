package handlers

import (
	"net/http"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/dto"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/gin-gonic/gin"
)

// portfolioHandler serves the authenticated user's portfolio.
type portfolioHandler struct {
	ledger portssvc.LedgerSvcFacade
}

func newPortfolioHandler(ledger portssvc.LedgerSvcFacade) *portfolioHandler {
	return &portfolioHandler{ledger: ledger}
}

func registerPortfolioRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerSvcFacade) {
	h := newPortfolioHandler(ledger)

	portfolio := rg.Group("/portfolio")
	{
		portfolio.GET("", h.getPortfolio)
		portfolio.POST("/buy", h.trade(domain.Buy))
		portfolio.POST("/sell", h.trade(domain.Sell))
	}
}

// getPortfolio godoc
// @Summary Show portfolio
// @Description Values every wallet in the base currency.
// @Tags portfolio
// @Produce json
// @Param base query string false "Base currency"
// @Success 200 {object} dto.PortfolioResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown base currency"
// @Security BearerAuth
// @Router /portfolio [get]
func (h *portfolioHandler) getPortfolio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.PortfolioParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err)
		return
	}

	summary, err := h.ledger.GetPortfolioSummary(c.Request.Context(), userID, params.Base)
	if err != nil {
		respondError(c, logger, err, "Failed to get portfolio")
		return
	}
	c.JSON(http.StatusOK, dto.ToPortfolioResponse(summary))
}

// trade godoc
// @Summary Buy or sell a currency
// @Tags portfolio
// @Accept json
// @Produce json
// @Param trade body dto.TradeRequest true "Currency and amount"
// @Success 200 {object} dto.TradeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown currency or wallet"
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Failure 503 {object} dto.ErrorResponse "Rate unavailable"
// @Security BearerAuth
// @Router /portfolio/buy [post]
// @Router /portfolio/sell [post]
func (h *portfolioHandler) trade(side domain.TradeSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			logger.Error("User ID not found in context")
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
			return
		}

		var req dto.TradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, logger, err)
			return
		}

		var (
			result *domain.TradeResult
			err    error
		)
		if side == domain.Buy {
			result, err = h.ledger.Buy(c.Request.Context(), userID, req.Currency, req.Amount)
		} else {
			result, err = h.ledger.Sell(c.Request.Context(), userID, req.Currency, req.Amount)
		}
		if err != nil {
			respondError(c, logger, err, "Failed to apply trade")
			return
		}
		c.JSON(http.StatusOK, dto.ToTradeResponse(result))
	}
}
