package services

import (
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/config"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
)

// RateSources bundles the provider adapters built by the caller.
type RateSources struct {
	Crypto portsprov.RateProvider
	// Fiat is nil when no EXCHANGERATE_API_KEY is configured.
	Fiat     portsprov.RateProvider
	Live     []portsprov.PairSource
	Fallback portsprov.PairSource
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, sources RateSources, emitter events.Emitter, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	currency := NewCurrencyService()
	container.Currency = currency

	resolverOpts := []RateResolverOption{WithResolverMetrics(m), WithFallbackSource(sources.Fallback)}
	if cfg.LiveRateResolution {
		resolverOpts = append(resolverOpts, WithLiveSources(sources.Live...))
	}
	container.RateResolver = NewRateResolverService(repos.RateCacheRepo, currency, cfg.RatesTTL, resolverOpts...)

	updaterOpts := []RateUpdaterOption{WithUpdaterEvents(emitter), WithUpdaterMetrics(m)}
	if sources.Crypto != nil {
		updaterOpts = append(updaterOpts, WithCryptoProvider(sources.Crypto))
	}
	if sources.Fiat != nil {
		updaterOpts = append(updaterOpts, WithFiatProvider(sources.Fiat))
	}
	container.RateUpdater = NewRateUpdaterService(repos.RateCacheRepo, repos.HistoryRepo, updaterOpts...)

	container.Ledger = NewLedgerService(repos.PortfolioRepo, currency, container.RateResolver, cfg.BaseCurrency,
		WithLedgerEvents(emitter),
		WithLedgerMetrics(m),
	)

	container.User = NewUserService(repos.UserRepo, repos.PortfolioRepo)
	container.TokenService = NewTokenService(cfg)

	return container
}
