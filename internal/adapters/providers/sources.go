package providers

import (
	"context"
	"fmt"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
)

// FallbackSourceName labels rates taken from the built-in table.
const FallbackSourceName = "Fallback"

// fallbackRates holds approximate rates used when no live source answers.
// Only the listed directions are served.
var fallbackRates = map[string]map[string]float64{
	"USD": {"EUR": 0.92, "BTC": 0.000023, "ETH": 0.00035, "RUB": 92.0},
	"EUR": {"USD": 1.09, "BTC": 0.000025, "ETH": 0.00038, "RUB": 100.0},
	"BTC": {"USD": 43500.0, "EUR": 40000.0, "ETH": 15.5, "RUB": 4002000.0},
	"ETH": {"USD": 2800.0, "EUR": 2576.0, "BTC": 0.064, "RUB": 257600.0},
	"RUB": {"USD": 0.011, "EUR": 0.01, "BTC": 0.00000025, "ETH": 0.0000039},
}

// StaticFallbackSource serves the built-in rate table.
type StaticFallbackSource struct{}

var _ portsprov.PairSource = StaticFallbackSource{}

func (StaticFallbackSource) Name() string { return FallbackSourceName }

func (StaticFallbackSource) FetchPair(_ context.Context, pair domain.CurrencyPair) (float64, error) {
	if r, ok := fallbackRates[pair.From][pair.To]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: no fallback rate for %s", apperrors.ErrNotFound, pair)
}

// LiveSource answers single pairs by running a full provider fetch.
type LiveSource struct {
	provider portsprov.RateProvider
}

var _ portsprov.PairSource = (*LiveSource)(nil)

// NewLiveSource wraps provider as a pair source.
func NewLiveSource(provider portsprov.RateProvider) *LiveSource {
	return &LiveSource{provider: provider}
}

func (s *LiveSource) Name() string { return s.provider.Name() }

// FetchPair skips the network for pairs the provider cannot quote. A reciprocal
// quote is inverted.
func (s *LiveSource) FetchPair(ctx context.Context, pair domain.CurrencyPair) (float64, error) {
	if !s.provider.Supports(pair) {
		return 0, fmt.Errorf("%w: %s does not quote %s", apperrors.ErrNotFound, s.provider.Name(), pair)
	}
	result, err := s.provider.FetchRates(ctx)
	if err != nil {
		return 0, err
	}
	if r, ok := result.Rates[pair]; ok && r > 0 {
		return r, nil
	}
	if r, ok := result.Rates[pair.Reciprocal()]; ok && r > 0 {
		return 1 / r, nil
	}
	return 0, fmt.Errorf("%w: %s returned no rate for %s", apperrors.ErrNotFound, s.provider.Name(), pair)
}
