package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/dto"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler serves the currency registry.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{currencyService: cs}
}

func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrencyByCode)
	}
}

// listCurrencies godoc
// @Summary List supported currencies
// @Tags currencies
// @Produce json
// @Success 200 {array} dto.CurrencyResponse
// @Security BearerAuth
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list currencies")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// getCurrencyByCode godoc
// @Summary Get currency by code
// @Tags currencies
// @Produce json
// @Param code path string true "Currency Code"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed code"
// @Failure 404 {object} dto.ErrorResponse "Unknown currency"
// @Security BearerAuth
// @Router /currencies/{code} [get]
func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err, "Failed to get currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}
