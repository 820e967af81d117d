package providers

import (
	"context"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// FetchResult is the outcome of one successful provider request.
type FetchResult struct {
	Rates           map[domain.CurrencyPair]float64
	StatusCode      int
	RequestDuration time.Duration
}

// RateProvider fetches a batch of rates from an external service.
// Failures are returned as *apperrors.ProviderError.
type RateProvider interface {
	// Name is the source label stored with every rate, e.g. "CoinGecko".
	Name() string

	// Supports reports whether the provider can quote pair in either direction.
	Supports(pair domain.CurrencyPair) bool

	// FetchRates issues a single request for every configured currency.
	FetchRates(ctx context.Context) (*FetchResult, error)
}

// PairSource answers a single pair on demand. It is consulted by the rate
// resolver when the cache has no fresh entry.
type PairSource interface {
	Name() string

	// FetchPair returns the rate of one unit of pair.From in pair.To.
	// apperrors.ErrNotFound means the source does not know the pair;
	// any other error is a failed attempt.
	FetchPair(ctx context.Context, pair domain.CurrencyPair) (float64, error)
}
