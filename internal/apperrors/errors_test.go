package apperrors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"invalid code is validation", &apperrors.InvalidCurrencyCodeError{Code: "$"}, apperrors.ErrValidation},
		{"unknown currency is not found", &apperrors.CurrencyNotFoundError{Code: "ZZZ"}, apperrors.ErrNotFound},
		{"missing wallet is not found", &apperrors.WalletNotFoundError{Code: "BTC"}, apperrors.ErrNotFound},
		{"provider error", apperrors.NewProviderError("CoinGecko", apperrors.ProviderTimeout, 0, context.DeadlineExceeded), apperrors.ErrProviderFailure},
		{"rate unavailable", &apperrors.RateUnavailableError{From: "BTC", To: "USD"}, apperrors.ErrRateUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.target)
		})
	}
}

func TestRateUnavailableError_UnwrapsProviderCause(t *testing.T) {
	cause := apperrors.NewProviderError("ExchangeRate-API", apperrors.ProviderRateLimited, 429, nil)
	err := &apperrors.RateUnavailableError{From: "EUR", To: "USD", Cause: cause}

	assert.True(t, err.FetchAttempted())
	assert.ErrorIs(t, err, apperrors.ErrProviderFailure)

	var pe *apperrors.ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, apperrors.ProviderRateLimited, pe.Kind)
	assert.Contains(t, err.Error(), "status 429")
}

func TestInsufficientFundsError_Message(t *testing.T) {
	err := &apperrors.InsufficientFundsError{
		Code:      "BTC",
		Available: decimal.RequireFromString("0.01"),
		Required:  decimal.RequireFromString("0.02"),
	}
	assert.Equal(t, "insufficient funds: available 0.01 BTC, required 0.02 BTC", err.Error())
}
