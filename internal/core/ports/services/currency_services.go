package services

import (
	"context"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// CurrencyReaderSvc defines read operations on the currency registry
type CurrencyReaderSvc interface {
	// GetCurrencyByCode normalizes code and returns its registry record.
	// Malformed codes yield *apperrors.InvalidCurrencyCodeError, unknown ones
	// *apperrors.CurrencyNotFoundError.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies returns every supported currency, fiat first.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// CurrencyExists reports whether a normalized code is in the registry.
	CurrencyExists(currencyCode string) bool
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
}
