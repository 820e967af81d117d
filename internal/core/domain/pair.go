package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
)

const pairSeparator = "_"

// CurrencyPair is an ordered (From, To) tuple. One unit of From costs Rate units of To.
type CurrencyPair struct {
	From string
	To   string
}

// NewCurrencyPair normalizes both codes and returns the pair.
func NewCurrencyPair(from, to string) (CurrencyPair, error) {
	f, err := NormalizeCurrencyCode(from)
	if err != nil {
		return CurrencyPair{}, err
	}
	t, err := NormalizeCurrencyCode(to)
	if err != nil {
		return CurrencyPair{}, err
	}
	return CurrencyPair{From: f, To: t}, nil
}

// ParseCurrencyPair parses a "FROM_TO" key.
func ParseCurrencyPair(key string) (CurrencyPair, error) {
	parts := strings.Split(key, pairSeparator)
	if len(parts) != 2 {
		return CurrencyPair{}, fmt.Errorf("%w: malformed pair key '%s'", apperrors.ErrValidation, key)
	}
	return NewCurrencyPair(parts[0], parts[1])
}

// Key returns the storage key, e.g. "BTC_USD".
func (p CurrencyPair) Key() string {
	return p.From + pairSeparator + p.To
}

// Reciprocal returns the inverse-direction pair.
func (p CurrencyPair) Reciprocal() CurrencyPair {
	return CurrencyPair{From: p.To, To: p.From}
}

// IsIdentity is true for pairs like USD_USD.
func (p CurrencyPair) IsIdentity() bool {
	return p.From == p.To
}

// Involves reports whether code is either side of the pair.
func (p CurrencyPair) Involves(code string) bool {
	return p.From == code || p.To == code
}

func (p CurrencyPair) String() string {
	return p.From + "->" + p.To
}
