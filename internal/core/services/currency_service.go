package services

import (
	"context"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
)

// registry lists the supported currencies, fiat first, in display order.
var registry = []domain.Currency{
	{CurrencyCode: "USD", Name: "US Dollar", Kind: domain.Fiat, IssuingCountry: "United States"},
	{CurrencyCode: "EUR", Name: "Euro", Kind: domain.Fiat, IssuingCountry: "Eurozone"},
	{CurrencyCode: "GBP", Name: "British Pound", Kind: domain.Fiat, IssuingCountry: "United Kingdom"},
	{CurrencyCode: "JPY", Name: "Japanese Yen", Kind: domain.Fiat, IssuingCountry: "Japan"},
	{CurrencyCode: "CHF", Name: "Swiss Franc", Kind: domain.Fiat, IssuingCountry: "Switzerland"},
	{CurrencyCode: "RUB", Name: "Russian Ruble", Kind: domain.Fiat, IssuingCountry: "Russia"},
	{CurrencyCode: "CNY", Name: "Chinese Yuan", Kind: domain.Fiat, IssuingCountry: "China"},
	{CurrencyCode: "CAD", Name: "Canadian Dollar", Kind: domain.Fiat, IssuingCountry: "Canada"},
	{CurrencyCode: "AUD", Name: "Australian Dollar", Kind: domain.Fiat, IssuingCountry: "Australia"},
	{CurrencyCode: "BTC", Name: "Bitcoin", Kind: domain.Crypto, Algorithm: "SHA-256", MarketCap: 1.12e12},
	{CurrencyCode: "ETH", Name: "Ethereum", Kind: domain.Crypto, Algorithm: "Ethash", MarketCap: 4.5e11},
	{CurrencyCode: "SOL", Name: "Solana", Kind: domain.Crypto, Algorithm: "Proof of History", MarketCap: 8.0e10},
	{CurrencyCode: "LTC", Name: "Litecoin", Kind: domain.Crypto, Algorithm: "Scrypt", MarketCap: 5.5e9},
	{CurrencyCode: "XRP", Name: "Ripple", Kind: domain.Crypto, Algorithm: "XRP Ledger", MarketCap: 3.2e10},
	{CurrencyCode: "ADA", Name: "Cardano", Kind: domain.Crypto, Algorithm: "Ouroboros", MarketCap: 1.5e10},
	{CurrencyCode: "DOT", Name: "Polkadot", Kind: domain.Crypto, Algorithm: "Nominated Proof-of-Stake", MarketCap: 7.5e9},
}

// CurrencyService serves the static currency registry.
type CurrencyService struct {
	byCode map[string]domain.Currency
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService() *CurrencyService {
	byCode := make(map[string]domain.Currency, len(registry))
	for _, c := range registry {
		byCode[c.CurrencyCode] = c
	}
	return &CurrencyService{byCode: byCode}
}

var _ portssvc.CurrencySvcFacade = (*CurrencyService)(nil)

// GetCurrencyByCode retrieves a currency by its code.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	code, err := domain.NormalizeCurrencyCode(currencyCode)
	if err != nil {
		return nil, err
	}
	c, ok := s.byCode[code]
	if !ok {
		return nil, &apperrors.CurrencyNotFoundError{Code: code}
	}
	return &c, nil
}

// ListCurrencies retrieves all available currencies.
func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	out := make([]domain.Currency, len(registry))
	copy(out, registry)
	return out, nil
}

func (s *CurrencyService) CurrencyExists(currencyCode string) bool {
	_, ok := s.byCode[currencyCode]
	return ok
}

// IsCrypto reports whether code is a registered crypto asset.
func (s *CurrencyService) IsCrypto(currencyCode string) bool {
	c, ok := s.byCode[currencyCode]
	return ok && c.Kind == domain.Crypto
}
