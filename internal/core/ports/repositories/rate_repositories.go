package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// RateCacheReader defines read operations on the rate cache
type RateCacheReader interface {
	// Get returns the entry stored under the exact pair key, or apperrors.ErrNotFound.
	Get(ctx context.Context, pair domain.CurrencyPair) (*domain.RateEntry, error)

	// IsFresh reports whether the exact pair exists and is at most maxAge old.
	IsFresh(ctx context.Context, pair domain.CurrencyPair, maxAge time.Duration) bool

	// Load returns a snapshot of the whole cache.
	Load(ctx context.Context) (*domain.RateCache, error)
}

// RateCacheWriter defines write operations on the rate cache
type RateCacheWriter interface {
	// Put stores a single rate stamped with the current time.
	Put(ctx context.Context, pair domain.CurrencyPair, rate float64, source string) (*domain.RateEntry, error)

	// PutBatch replaces all cached pairs with entries in one write and sets last_refresh.
	PutBatch(ctx context.Context, entries []domain.RateEntry) (*domain.RateCache, error)
}

// RateCacheRepositoryFacade combines all rate cache operations
type RateCacheRepositoryFacade interface {
	RateCacheReader
	RateCacheWriter
}

// HistoryRepository is the append-only log of fetched rates.
type HistoryRepository interface {
	Append(ctx context.Context, record domain.HistoryRecord) error
	AppendMany(ctx context.Context, records []domain.HistoryRecord) error
	List(ctx context.Context) ([]domain.HistoryRecord, error)
}
