package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
)

// IdentitySource labels the rate of a currency against itself.
const IdentitySource = "identity"

// DefaultRatesTTL is used when the resolver is built with a non-positive TTL.
const DefaultRatesTTL = 300 * time.Second

// RateResolverService decides which rate to use for a conversion.
type RateResolverService struct {
	BaseService
	cache      portsrepo.RateCacheRepositoryFacade
	currencies portssvc.CurrencyReaderSvc
	ttl        time.Duration
	live       []portsprov.PairSource
	fallback   portsprov.PairSource
}

// RateResolverOption configures a RateResolverService.
type RateResolverOption func(*RateResolverService)

// WithResolverClock replaces time.Now, mainly for tests.
func WithResolverClock(now func() time.Time) RateResolverOption {
	return func(s *RateResolverService) {
		s.Now = now
	}
}

// WithResolverMetrics records resolution outcomes.
func WithResolverMetrics(m *metrics.Metrics) RateResolverOption {
	return func(s *RateResolverService) {
		s.Metrics = m
	}
}

// WithLiveSources sets the sources asked, in order, for a missing or stale pair.
func WithLiveSources(sources ...portsprov.PairSource) RateResolverOption {
	return func(s *RateResolverService) {
		s.live = append(s.live, sources...)
	}
}

// WithFallbackSource sets the source asked after every live source.
func WithFallbackSource(source portsprov.PairSource) RateResolverOption {
	return func(s *RateResolverService) {
		s.fallback = source
	}
}

// NewRateResolverService creates a new RateResolverService.
func NewRateResolverService(cache portsrepo.RateCacheRepositoryFacade, currencies portssvc.CurrencyReaderSvc, ttl time.Duration, opts ...RateResolverOption) *RateResolverService {
	if ttl <= 0 {
		ttl = DefaultRatesTTL
	}
	s := &RateResolverService{
		BaseService: newBaseService(),
		cache:       cache,
		currencies:  currencies,
		ttl:         ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.RateResolverSvc = (*RateResolverService)(nil)

// resolution is a rate together with the entry it came from.
type resolution struct {
	rate      float64
	updatedAt *time.Time
	source    string
}

func (s *RateResolverService) GetOrFetchRate(ctx context.Context, from, to string) (float64, error) {
	pair, err := domain.NewCurrencyPair(from, to)
	if err != nil {
		return 0, err
	}
	res, err := s.resolve(ctx, pair)
	if err != nil {
		return 0, err
	}
	return res.rate, nil
}

// GetRateQuote validates both codes against the registry before resolving.
func (s *RateResolverService) GetRateQuote(ctx context.Context, from, to string) (*domain.RateQuote, error) {
	fromCur, err := s.currencies.GetCurrencyByCode(ctx, from)
	if err != nil {
		return nil, err
	}
	toCur, err := s.currencies.GetCurrencyByCode(ctx, to)
	if err != nil {
		return nil, err
	}
	pair := domain.CurrencyPair{From: fromCur.CurrencyCode, To: toCur.CurrencyCode}

	res, err := s.resolve(ctx, pair)
	if err != nil {
		return nil, err
	}
	return &domain.RateQuote{
		Pair:        pair,
		Rate:        res.rate,
		ReverseRate: 1 / res.rate,
		UpdatedAt:   res.updatedAt,
		Source:      res.source,
	}, nil
}

func (s *RateResolverService) LoadRatesCache(ctx context.Context) (*domain.RateCache, error) {
	return s.cache.Load(ctx)
}

func (s *RateResolverService) resolve(ctx context.Context, pair domain.CurrencyPair) (*resolution, error) {
	if pair.IsIdentity() {
		s.Metrics.RecordResolution(metrics.OutcomeIdentity)
		return &resolution{rate: 1, source: IdentitySource}, nil
	}

	if res, ok := s.fromCache(ctx, pair); ok {
		return res, nil
	}
	return s.fetch(ctx, pair)
}

// fromCache returns a fresh cached rate. A present direct entry decides on its
// own even when a reciprocal entry is fresher.
func (s *RateResolverService) fromCache(ctx context.Context, pair domain.CurrencyPair) (*resolution, bool) {
	cache, err := s.cache.Load(ctx)
	if err != nil {
		s.LogWarn(ctx, "Rate cache unavailable", slog.String("error", err.Error()))
		return nil, false
	}
	entry, inverted, ok := cache.Lookup(pair)
	if !ok {
		return nil, false
	}

	now := s.now()
	if !entry.IsFresh(now, s.ttl) {
		s.LogDebug(ctx, "Cached rate is stale", slog.String("pair", entry.Pair.Key()), slog.Duration("age", entry.Age(now)))
		return nil, false
	}

	rate, outcome := entry.Rate, metrics.OutcomeHit
	if inverted {
		rate, outcome = 1/entry.Rate, metrics.OutcomeReciprocal
	}
	s.Metrics.RecordResolution(outcome)
	ts := entry.UpdatedAt
	return &resolution{rate: rate, updatedAt: &ts, source: entry.Source}, true
}

func (s *RateResolverService) sources() []portsprov.PairSource {
	out := make([]portsprov.PairSource, 0, len(s.live)+1)
	out = append(out, s.live...)
	if s.fallback != nil {
		out = append(out, s.fallback)
	}
	return out
}

// fetch asks every source in order for exactly pair. The first failed attempt
// becomes the cause of the final error when no source answers.
func (s *RateResolverService) fetch(ctx context.Context, pair domain.CurrencyPair) (*resolution, error) {
	var cause error
	for i, src := range s.sources() {
		rate, err := src.FetchPair(ctx, pair)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			s.LogWarn(ctx, "Rate source failed", slog.String("source", src.Name()), slog.String("pair", pair.Key()), slog.String("error", err.Error()))
			if cause == nil {
				cause = err
			}
			continue
		}

		entry, err := s.cache.Put(ctx, pair, rate, src.Name())
		if err != nil {
			s.LogError(ctx, err, "Failed to store fetched rate", slog.String("pair", pair.Key()))
			return nil, fmt.Errorf("failed to store rate %s: %w", pair.Key(), err)
		}

		outcome := metrics.OutcomeFetched
		if i >= len(s.live) {
			outcome = metrics.OutcomeFallback
		}
		s.Metrics.RecordResolution(outcome)
		s.LogInfo(ctx, "Rate fetched", slog.String("pair", pair.Key()), slog.String("source", src.Name()), slog.Float64("rate", rate))
		ts := entry.UpdatedAt
		return &resolution{rate: entry.Rate, updatedAt: &ts, source: entry.Source}, nil
	}

	s.Metrics.RecordResolution(metrics.OutcomeUnavailable)
	return nil, &apperrors.RateUnavailableError{From: pair.From, To: pair.To, Cause: cause}
}

// ListRates returns cached entries narrowed by filter, applied in the order
// currency, top, base.
func (s *RateResolverService) ListRates(ctx context.Context, filter domain.RateListFilter) (*domain.RateListing, error) {
	cache, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries := cache.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: local rates cache is empty, run update-rates first", apperrors.ErrNotFound)
	}

	if filter.Currency != "" {
		code, err := domain.NormalizeCurrencyCode(filter.Currency)
		if err != nil {
			return nil, err
		}
		entries = filterEntries(entries, func(e domain.RateEntry) bool { return e.Pair.Involves(code) })
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: no cached rate for '%s'", apperrors.ErrNotFound, code)
		}
	}

	ordered := false
	if filter.Top > 0 {
		crypto := filterEntries(entries, func(e domain.RateEntry) bool { return s.isCrypto(ctx, e.Pair.From) })
		if len(crypto) > 0 {
			sort.SliceStable(crypto, func(i, j int) bool { return crypto[i].Rate > crypto[j].Rate })
			if len(crypto) > filter.Top {
				crypto = crypto[:filter.Top]
			}
			entries = crypto
			ordered = true
		}
	}

	if filter.Base != "" {
		base, err := domain.NormalizeCurrencyCode(filter.Base)
		if err != nil {
			return nil, err
		}
		entries = quotedIn(entries, base)
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: no cached rate quoted in '%s'", apperrors.ErrNotFound, base)
		}
	}

	if !ordered {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Pair.Key() < entries[j].Pair.Key() })
	}
	return &domain.RateListing{Entries: entries, LastRefresh: cache.LastRefresh}, nil
}

func (s *RateResolverService) isCrypto(ctx context.Context, code string) bool {
	c, err := s.currencies.GetCurrencyByCode(ctx, code)
	return err == nil && c.Kind == domain.Crypto
}

func filterEntries(entries []domain.RateEntry, keep func(domain.RateEntry) bool) []domain.RateEntry {
	out := make([]domain.RateEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// quotedIn keeps entries priced in base; a stored BASE_X entry is turned into X_BASE.
func quotedIn(entries []domain.RateEntry, base string) []domain.RateEntry {
	out := make([]domain.RateEntry, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Pair.To == base:
			out = append(out, e)
		case e.Pair.From == base:
			e.Pair = e.Pair.Reciprocal()
			e.Rate = 1 / e.Rate
			out = append(out, e)
		}
	}
	return out
}
