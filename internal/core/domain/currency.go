package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
)

// CurrencyKind separates fiat money from crypto assets.
type CurrencyKind string

const (
	Fiat   CurrencyKind = "FIAT"
	Crypto CurrencyKind = "CRYPTO"
)

const (
	minCodeLength = 2
	maxCodeLength = 5
)

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode   string       `json:"currencyCode"` // e.g. "USD", "BTC"
	Name           string       `json:"name"`
	Kind           CurrencyKind `json:"kind"`
	IssuingCountry string       `json:"issuingCountry,omitempty"` // fiat only
	Algorithm      string       `json:"algorithm,omitempty"`      // crypto only
	MarketCap      float64      `json:"marketCap,omitempty"`      // crypto only
}

// DisplayInfo renders the currency for CLI listings.
func (c Currency) DisplayInfo() string {
	switch c.Kind {
	case Crypto:
		mcap := "N/A"
		if c.MarketCap > 0 {
			mcap = fmt.Sprintf("%.2e", c.MarketCap)
		}
		return fmt.Sprintf("[CRYPTO] %s - %s (Algo: %s, MCAP: %s)", c.CurrencyCode, c.Name, c.Algorithm, mcap)
	default:
		return fmt.Sprintf("[FIAT] %s - %s (Issuing: %s)", c.CurrencyCode, c.Name, c.IssuingCountry)
	}
}

// NormalizeCurrencyCode trims and upper-cases a code and checks its shape:
// 2 to 5 letters or digits, no spaces.
func NormalizeCurrencyCode(code string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(code))
	if clean == "" {
		return "", &apperrors.InvalidCurrencyCodeError{Code: code, Reason: "code must not be empty"}
	}
	if len(clean) < minCodeLength || len(clean) > maxCodeLength {
		return "", &apperrors.InvalidCurrencyCodeError{Code: code, Reason: "code must be 2 to 5 characters long"}
	}
	for _, r := range clean {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return "", &apperrors.InvalidCurrencyCodeError{Code: code, Reason: "code must contain only letters and digits"}
		}
	}
	return clean, nil
}
