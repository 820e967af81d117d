package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/dto"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/gin-gonic/gin"
)

// rateHandler serves cached rates and triggers updates.
type rateHandler struct {
	resolver portssvc.RateResolverSvc
	updater  portssvc.RateUpdaterSvc
}

func newRateHandler(resolver portssvc.RateResolverSvc, updater portssvc.RateUpdaterSvc) *rateHandler {
	return &rateHandler{resolver: resolver, updater: updater}
}

func registerRateRoutes(rg *gin.RouterGroup, resolver portssvc.RateResolverSvc, updater portssvc.RateUpdaterSvc) {
	h := newRateHandler(resolver, updater)

	rates := rg.Group("/rates")
	{
		rates.GET("", h.listRates)
		rates.GET("/:from/:to", h.getRate)
		rates.POST("/update", h.updateRates)
	}
}

// listRates godoc
// @Summary List cached rates
// @Tags rates
// @Produce json
// @Param currency query string false "Only pairs involving this code"
// @Param top query int false "N most expensive crypto pairs"
// @Param base query string false "Quote pairs against this code"
// @Success 200 {object} dto.ListRatesResponse
// @Failure 404 {object} dto.ErrorResponse "Cache empty or nothing matched"
// @Security BearerAuth
// @Router /rates [get]
func (h *rateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err)
		return
	}

	listing, err := h.resolver.ListRates(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRatesResponse(listing))
}

// getRate godoc
// @Summary Get the rate of one pair
// @Description Serves a fresh cached rate or fetches it from the configured sources.
// @Tags rates
// @Produce json
// @Param from path string true "From code"
// @Param to path string true "To code"
// @Success 200 {object} dto.RateQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "Rate unavailable"
// @Security BearerAuth
// @Router /rates/{from}/{to} [get]
func (h *rateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	quote, err := h.resolver.GetRateQuote(c.Request.Context(), c.Param("from"), c.Param("to"))
	if err != nil {
		respondError(c, logger, err, "Failed to get rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateQuoteResponse(quote))
}

// updateRates godoc
// @Summary Refresh the rates cache
// @Description Runs the updater. A partial failure still answers 200 with errors listed.
// @Tags rates
// @Accept json
// @Produce json
// @Param update body dto.UpdateRatesRequest false "Source to refresh"
// @Success 200 {object} dto.UpdateRatesResponse
// @Failure 502 {object} dto.ErrorResponse "Every provider failed"
// @Security BearerAuth
// @Router /rates/update [post]
func (h *rateHandler) updateRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, logger, err)
		return
	}

	result, err := h.updater.RunUpdate(c.Request.Context(), req.Source)
	if err != nil {
		respondError(c, logger, err, "Failed to update rates")
		return
	}

	logger.Info("Rates updated", slog.Int("total_rates", result.TotalRates), slog.Int("errors", len(result.Errors)))
	c.JSON(http.StatusOK, dto.ToUpdateRatesResponse(result))
}
