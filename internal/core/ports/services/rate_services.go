package services

import (
	"context"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// Update sources accepted by RateUpdaterSvc.RunUpdate.
const (
	UpdateSourceAll          = "all"
	UpdateSourceCoinGecko    = "coingecko"
	UpdateSourceExchangeRate = "exchangerate"
)

// RateResolverSvc decides which rate to use for a conversion.
type RateResolverSvc interface {
	// GetOrFetchRate returns the rate of one unit of from in to, consulting
	// the cache first and the configured sources on a miss or stale entry.
	GetOrFetchRate(ctx context.Context, from, to string) (float64, error)

	// GetRateQuote checks both codes against the registry and returns the
	// rate together with its reverse rate, timestamp and source.
	GetRateQuote(ctx context.Context, from, to string) (*domain.RateQuote, error)

	// ListRates returns cached entries narrowed by filter.
	ListRates(ctx context.Context, filter domain.RateListFilter) (*domain.RateListing, error)

	// LoadRatesCache returns a snapshot of the whole cache.
	LoadRatesCache(ctx context.Context) (*domain.RateCache, error)
}

// RateUpdaterSvc refreshes the cache from the external providers.
type RateUpdaterSvc interface {
	// RunUpdate fetches from the selected providers ("", "all", "coingecko"
	// or "exchangerate") and merges every success into the cache.
	RunUpdate(ctx context.Context, source string) (*domain.UpdateResult, error)
}
