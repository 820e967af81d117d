package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/dto"
	"github.com/gin-gonic/gin"
)

// statusFor maps an application error to its HTTP status. Typed errors are
// checked before the sentinels they wrap.
func statusFor(err error) int {
	var (
		insufficient *apperrors.InsufficientFundsError
		unavailable  *apperrors.RateUnavailableError
	)
	switch {
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable), errors.Is(err, apperrors.ErrRateUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrUpdateFailed), errors.Is(err, apperrors.ErrProviderFailure):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are logged and
// replaced with msg so storage details never reach the client.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

// bindError answers a request whose body or query failed to bind.
func bindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}
