package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
)

type rateEntryDocument struct {
	Rate      float64 `json:"rate"`
	UpdatedAt string  `json:"updated_at"`
	Source    string  `json:"source"`
}

type rateCacheDocument struct {
	Pairs       map[string]rateEntryDocument `json:"pairs"`
	LastRefresh *string                      `json:"last_refresh"`
}

// RateCacheRepository keeps the rate cache in memory and writes the whole
// document through the KVStore after every mutation.
type RateCacheRepository struct {
	store  portsrepo.KVStore
	now    func() time.Time
	logger *slog.Logger

	mu    sync.RWMutex
	cache *domain.RateCache
}

var _ portsrepo.RateCacheRepositoryFacade = (*RateCacheRepository)(nil)

// RateCacheOption configures a RateCacheRepository.
type RateCacheOption func(*RateCacheRepository)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) RateCacheOption {
	return func(r *RateCacheRepository) {
		r.now = now
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) RateCacheOption {
	return func(r *RateCacheRepository) {
		r.logger = logger
	}
}

// NewRateCacheRepository loads the persisted cache. A missing document yields
// an empty cache; a corrupt one is logged and treated as empty so that the
// next update can rebuild it.
func NewRateCacheRepository(ctx context.Context, store portsrepo.KVStore, opts ...RateCacheOption) (*RateCacheRepository, error) {
	r := &RateCacheRepository{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

func (r *RateCacheRepository) read(ctx context.Context) (*domain.RateCache, error) {
	var doc rateCacheDocument
	found, err := loadDocument(ctx, r.store, portsrepo.RatesCacheKey, &doc)
	if err != nil {
		if found {
			r.logger.Warn("Rate cache is unreadable, starting empty", slog.String("error", err.Error()))
			return domain.NewRateCache(), nil
		}
		return nil, fmt.Errorf("failed to load rate cache: %w", err)
	}

	cache := domain.NewRateCache()
	for key, e := range doc.Pairs {
		pair, err := domain.ParseCurrencyPair(key)
		if err != nil {
			r.logger.Warn("Skipping malformed rate cache key", slog.String("key", key))
			continue
		}
		if e.Rate <= 0 {
			r.logger.Warn("Skipping non-positive cached rate", slog.String("pair", key), slog.Float64("rate", e.Rate))
			continue
		}
		updatedAt, err := parseTimestamp(e.UpdatedAt)
		if err != nil {
			r.logger.Warn("Skipping cached rate with invalid timestamp", slog.String("pair", key))
			continue
		}
		cache.Pairs[pair.Key()] = domain.RateEntry{Pair: pair, Rate: e.Rate, UpdatedAt: updatedAt, Source: e.Source}
	}
	if doc.LastRefresh != nil {
		if ts, err := parseTimestamp(*doc.LastRefresh); err == nil {
			cache.LastRefresh = &ts
		}
	}
	return cache, nil
}

func (r *RateCacheRepository) write(ctx context.Context, cache *domain.RateCache) error {
	doc := rateCacheDocument{Pairs: make(map[string]rateEntryDocument, len(cache.Pairs))}
	for key, e := range cache.Pairs {
		doc.Pairs[key] = rateEntryDocument{Rate: e.Rate, UpdatedAt: formatTimestamp(e.UpdatedAt), Source: e.Source}
	}
	if cache.LastRefresh != nil {
		ts := formatTimestamp(*cache.LastRefresh)
		doc.LastRefresh = &ts
	}
	if err := saveDocument(ctx, r.store, portsrepo.RatesCacheKey, doc); err != nil {
		return fmt.Errorf("failed to persist rate cache: %w", err)
	}
	return nil
}

func (r *RateCacheRepository) Get(ctx context.Context, pair domain.CurrencyPair) (*domain.RateEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.cache.Pairs[pair.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: rate %s", apperrors.ErrNotFound, pair.Key())
	}
	return &e, nil
}

func (r *RateCacheRepository) IsFresh(ctx context.Context, pair domain.CurrencyPair, maxAge time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.cache.Pairs[pair.Key()]
	return ok && e.IsFresh(r.now(), maxAge)
}

func (r *RateCacheRepository) Load(ctx context.Context) (*domain.RateCache, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache.Clone(), nil
}

// Put stores rate for pair stamped with the current time. A stored reciprocal
// entry is left as is.
func (r *RateCacheRepository) Put(ctx context.Context, pair domain.CurrencyPair, rate float64, source string) (*domain.RateEntry, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: rate for %s must be positive", apperrors.ErrValidation, pair.Key())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := domain.RateEntry{Pair: pair, Rate: rate, UpdatedAt: r.now().UTC(), Source: source}
	next := r.cache.Clone()
	next.Pairs[pair.Key()] = entry

	if err := r.write(ctx, next); err != nil {
		return nil, err
	}
	r.cache = next
	return &entry, nil
}

// PutBatch replaces every cached pair with entries in a single write and
// stamps last_refresh. Entries without a timestamp get the current time.
func (r *RateCacheRepository) PutBatch(ctx context.Context, entries []domain.RateEntry) (*domain.RateCache, error) {
	for _, e := range entries {
		if e.Rate <= 0 {
			return nil, fmt.Errorf("%w: rate for %s must be positive", apperrors.ErrValidation, e.Pair.Key())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	next := domain.NewRateCache()
	for _, e := range entries {
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
		next.Pairs[e.Pair.Key()] = e
	}
	next.LastRefresh = &now

	if err := r.write(ctx, next); err != nil {
		return nil, err
	}
	r.cache = next
	return next.Clone(), nil
}
