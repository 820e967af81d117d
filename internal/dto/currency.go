package dto

import "github.com/SscSPs/valutatrade_hub/internal/core/domain"

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode   string  `json:"currencyCode"`
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	IssuingCountry string  `json:"issuingCountry,omitempty"`
	Algorithm      string  `json:"algorithm,omitempty"`
	MarketCap      float64 `json:"marketCap,omitempty"`
	Display        string  `json:"display"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode:   curr.CurrencyCode,
		Name:           curr.Name,
		Kind:           string(curr.Kind),
		IssuingCountry: curr.IssuingCountry,
		Algorithm:      curr.Algorithm,
		MarketCap:      curr.MarketCap,
		Display:        curr.DisplayInfo(),
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}
