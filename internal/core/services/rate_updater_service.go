package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
)

// Update run statuses reported to metrics and events.
const (
	UpdateStatusSuccess = "success"
	UpdateStatusPartial = "partial"
	UpdateStatusFailed  = "failed"
)

// systemActor is the distinct id of events not caused by a user.
const systemActor = "system"

// providerSlot is one position in the fixed update order.
type providerSlot struct {
	source   string
	provider portsprov.RateProvider
	// missing is reported when the slot is selected but has no provider.
	missing string
}

// RateUpdaterService refreshes the rate cache from the external providers.
type RateUpdaterService struct {
	BaseService
	cache   portsrepo.RateCacheWriter
	history portsrepo.HistoryRepository
	crypto  portsprov.RateProvider
	fiat    portsprov.RateProvider
}

// RateUpdaterOption configures a RateUpdaterService.
type RateUpdaterOption func(*RateUpdaterService)

// WithCryptoProvider sets the provider run first.
func WithCryptoProvider(p portsprov.RateProvider) RateUpdaterOption {
	return func(s *RateUpdaterService) {
		s.crypto = p
	}
}

// WithFiatProvider sets the provider run second. Leaving it unset marks the
// fiat source as not configured.
func WithFiatProvider(p portsprov.RateProvider) RateUpdaterOption {
	return func(s *RateUpdaterService) {
		s.fiat = p
	}
}

func WithUpdaterEvents(e events.Emitter) RateUpdaterOption {
	return func(s *RateUpdaterService) {
		if e != nil {
			s.Events = e
		}
	}
}

func WithUpdaterMetrics(m *metrics.Metrics) RateUpdaterOption {
	return func(s *RateUpdaterService) {
		s.Metrics = m
	}
}

func WithUpdaterClock(now func() time.Time) RateUpdaterOption {
	return func(s *RateUpdaterService) {
		s.Now = now
	}
}

// NewRateUpdaterService creates a new RateUpdaterService.
func NewRateUpdaterService(cache portsrepo.RateCacheWriter, history portsrepo.HistoryRepository, opts ...RateUpdaterOption) *RateUpdaterService {
	s := &RateUpdaterService{
		BaseService: newBaseService(),
		cache:       cache,
		history:     history,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.RateUpdaterSvc = (*RateUpdaterService)(nil)

func (s *RateUpdaterService) slots(source string) ([]providerSlot, error) {
	crypto := providerSlot{source: portssvc.UpdateSourceCoinGecko, provider: s.crypto, missing: "coingecko: provider is not configured"}
	fiat := providerSlot{source: portssvc.UpdateSourceExchangeRate, provider: s.fiat, missing: "exchangerate: provider is not configured, set EXCHANGERATE_API_KEY"}

	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", portssvc.UpdateSourceAll:
		return []providerSlot{crypto, fiat}, nil
	case portssvc.UpdateSourceCoinGecko:
		return []providerSlot{crypto}, nil
	case portssvc.UpdateSourceExchangeRate:
		return []providerSlot{fiat}, nil
	default:
		return nil, fmt.Errorf("%w: unknown update source '%s', expected one of %s, %s, %s",
			apperrors.ErrValidation, source, portssvc.UpdateSourceAll, portssvc.UpdateSourceCoinGecko, portssvc.UpdateSourceExchangeRate)
	}
}

// RunUpdate fetches from every selected provider in fixed order. A provider
// failure is collected and does not stop the others; on overlapping pairs the
// later provider wins. All rates are merged into the cache with one write.
func (s *RateUpdaterService) RunUpdate(ctx context.Context, source string) (*domain.UpdateResult, error) {
	slots, err := s.slots(source)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Starting rates update", slog.String("source", source))
	s.Emit(ctx, events.RateUpdateStarted, systemActor, map[string]any{"source": source})

	var (
		errs   []string
		merged = make(map[string]domain.RateEntry)
		order  []string
	)
	for _, slot := range slots {
		if slot.provider == nil {
			s.LogWarn(ctx, "Rate provider not configured", slog.String("source", slot.source))
			errs = append(errs, slot.missing)
			continue
		}

		entries, err := s.fetchProvider(ctx, slot.provider)
		if err != nil {
			s.LogError(ctx, err, "Rate provider failed", slog.String("provider", slot.provider.Name()))
			errs = append(errs, err.Error())
			continue
		}
		for _, e := range entries {
			key := e.Pair.Key()
			if _, seen := merged[key]; !seen {
				order = append(order, key)
			}
			merged[key] = e
		}
	}

	if len(merged) == 0 {
		s.finish(ctx, source, UpdateStatusFailed, 0, errs)
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUpdateFailed, joinErrors(errs))
	}

	batch := make([]domain.RateEntry, 0, len(order))
	for _, key := range order {
		batch = append(batch, merged[key])
	}
	cache, err := s.cache.PutBatch(ctx, batch)
	if err != nil {
		s.LogError(ctx, err, "Failed to persist rates cache")
		s.finish(ctx, source, UpdateStatusFailed, 0, append(errs, err.Error()))
		return nil, fmt.Errorf("failed to persist rates cache: %w", err)
	}

	result := &domain.UpdateResult{TotalRates: len(batch), Errors: errs}
	if cache.LastRefresh != nil {
		result.LastRefresh = *cache.LastRefresh
	}

	status := UpdateStatusSuccess
	if result.HasErrors() {
		status = UpdateStatusPartial
	}
	s.Metrics.RecordUpdate(status, len(cache.Pairs))
	s.finish(ctx, source, status, result.TotalRates, errs)
	s.LogInfo(ctx, "Rates update finished", slog.String("status", status), slog.Int("total_rates", result.TotalRates), slog.Int("errors", len(errs)))
	return result, nil
}

// fetchProvider runs one provider and logs its rates to the history.
func (s *RateUpdaterService) fetchProvider(ctx context.Context, p portsprov.RateProvider) ([]domain.RateEntry, error) {
	res, err := p.FetchRates(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	pairs := make([]domain.CurrencyPair, 0, len(res.Rates))
	for pair := range res.Rates {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key() < pairs[j].Key() })

	entries := make([]domain.RateEntry, 0, len(pairs))
	records := make([]domain.HistoryRecord, 0, len(pairs))
	meta := domain.HistoryMeta{RequestMS: res.RequestDuration.Milliseconds(), StatusCode: res.StatusCode}
	for _, pair := range pairs {
		rate := res.Rates[pair]
		entries = append(entries, domain.RateEntry{Pair: pair, Rate: rate, UpdatedAt: now, Source: p.Name()})
		records = append(records, domain.NewHistoryRecord(pair, rate, now, p.Name(), meta))
	}

	if err := s.history.AppendMany(ctx, records); err != nil {
		// History is an audit trail; the fetched rates are still usable.
		s.LogError(ctx, err, "Failed to append rates history", slog.String("provider", p.Name()))
	}
	s.LogInfo(ctx, "Fetched rates", slog.String("provider", p.Name()), slog.Int("count", len(entries)))
	return entries, nil
}

func (s *RateUpdaterService) finish(ctx context.Context, source, status string, total int, errs []string) {
	if status == UpdateStatusFailed {
		s.Metrics.RecordUpdate(status, -1)
	}
	s.Emit(ctx, events.RateUpdateFinished, systemActor, map[string]any{
		"source":      source,
		"status":      status,
		"total_rates": total,
		"errors":      len(errs),
	})
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return "no rates fetched"
	}
	return strings.Join(errs, "; ")
}
