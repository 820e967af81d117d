package repositories

import (
	"context"
)

// KVStore persists whole JSON documents under a key.
// Implementations must make Put atomic: a concurrent or later reader sees
// either the previous document or the new one, never a partial write.
type KVStore interface {
	// Get returns the stored document, or apperrors.ErrNotFound when the key was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, data []byte) error
}

// Document keys shared by every backend.
const (
	RatesCacheKey   = "rates"
	RatesHistoryKey = "exchange_rates"
	UsersKey        = "users"
	PortfoliosKey   = "portfolios"
)
