package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/SscSPs/valutatrade_hub/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyService_GetCurrencyByCode(t *testing.T) {
	svc := services.NewCurrencyService()
	ctx := context.Background()

	btc, err := svc.GetCurrencyByCode(ctx, " btc ")
	require.NoError(t, err)
	assert.Equal(t, "BTC", btc.CurrencyCode)
	assert.Equal(t, domain.Crypto, btc.Kind)
	assert.Equal(t, "[CRYPTO] BTC - Bitcoin (Algo: SHA-256, MCAP: 1.12e+12)", btc.DisplayInfo())

	eur, err := svc.GetCurrencyByCode(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "[FIAT] EUR - Euro (Issuing: Eurozone)", eur.DisplayInfo())

	_, err = svc.GetCurrencyByCode(ctx, "XYZ")
	var notFound *apperrors.CurrencyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "XYZ", notFound.Code)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetCurrencyByCode(ctx, "U$D")
	var invalid *apperrors.InvalidCurrencyCodeError
	assert.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCurrencyService_ListCurrencies(t *testing.T) {
	svc := services.NewCurrencyService()

	list, err := svc.ListCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 16)

	seenCrypto := false
	for _, c := range list {
		if c.Kind == domain.Crypto {
			seenCrypto = true
			continue
		}
		assert.False(t, seenCrypto, "fiat currencies must be listed first, got %s after crypto", c.CurrencyCode)
	}

	list[0].Name = "changed"
	again, err := svc.ListCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "US Dollar", again[0].Name)
}

func TestCurrencyService_Exists(t *testing.T) {
	svc := services.NewCurrencyService()
	assert.True(t, svc.CurrencyExists("USD"))
	assert.True(t, svc.CurrencyExists("DOT"))
	assert.False(t, svc.CurrencyExists("usd"))
	assert.False(t, svc.CurrencyExists("DOGE"))
	assert.True(t, svc.IsCrypto("ETH"))
	assert.False(t, svc.IsCrypto("EUR"))
}
