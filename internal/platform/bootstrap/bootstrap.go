// Package bootstrap wires storage, providers and services from a Config. It
// is shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/valutatrade_hub/internal/adapters/database/pgsql"
	"github.com/SscSPs/valutatrade_hub/internal/adapters/kvstore/filestore"
	"github.com/SscSPs/valutatrade_hub/internal/adapters/providers"
	"github.com/SscSPs/valutatrade_hub/internal/adapters/repositories"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/core/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/config"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
	"github.com/SscSPs/valutatrade_hub/pkg/database"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime is a fully wired application.
type Runtime struct {
	Services *portssvc.ServiceContainer
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Events   events.Emitter

	closers []func()
}

// Close releases the database pool and flushes event sinks, in reverse order.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// Option adjusts how a Runtime is built.
type Option func(*options)

type options struct {
	migrationsPath string
	store          portsrepo.KVStore
}

// WithMigrationsPath overrides database.DefaultMigrationsPath.
func WithMigrationsPath(path string) Option {
	return func(o *options) {
		o.migrationsPath = path
	}
}

// WithStore skips backend selection and uses store directly.
func WithStore(store portsrepo.KVStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// New opens the configured storage backend and builds the service container.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runtime, error) {
	o := options{migrationsPath: database.DefaultMigrationsPath}
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{Registry: prometheus.NewRegistry()}
	rt.Metrics = metrics.New(rt.Registry)

	store := o.store
	if store == nil {
		var err error
		store, err = rt.openStore(ctx, cfg, o.migrationsPath, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	repos, err := repositories.NewRepositoryProvider(ctx, store, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	sources, err := BuildRateSources(cfg, rt.Metrics, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Events = rt.buildEmitter(cfg, logger)
	rt.Services = services.NewServiceContainer(cfg, repos, sources, rt.Events, rt.Metrics)
	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg *config.Config, migrationsPath string, logger *slog.Logger) (portsrepo.KVStore, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		rt.closers = append(rt.closers, func() { database.ClosePgxPool(pool, logger) })
		if err := database.RunMigrations(cfg.DatabaseURL, migrationsPath, logger); err != nil {
			return nil, err
		}
		return pgsql.NewKVStore(pool), nil
	default:
		store, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using file storage", slog.String("dir", cfg.DataDir))
		return store, nil
	}
}

func (rt *Runtime) buildEmitter(cfg *config.Config, logger *slog.Logger) events.Emitter {
	emitters := events.MultiEmitter{events.NewSlogEmitter(logger)}
	ph, err := events.NewPostHogEmitter(cfg.PostHogAPIKey, cfg.PostHogEndpoint, logger)
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return emitters
	}
	if ph != nil {
		emitters = append(emitters, ph)
		rt.closers = append(rt.closers, ph.Close)
	}
	return emitters
}

// BuildRateSources creates the provider clients. The fiat provider is only
// built when EXCHANGERATE_API_KEY is set; the static table is always the
// last fallback.
func BuildRateSources(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (services.RateSources, error) {
	httpCfg := providers.DefaultHTTPConfig(cfg.RequestTimeout, cfg.ProviderInterval, m)
	sources := services.RateSources{Fallback: providers.StaticFallbackSource{}}

	crypto, err := providers.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CryptoCurrencies, httpCfg)
	if err != nil {
		return sources, fmt.Errorf("failed to configure CoinGecko client: %w", err)
	}
	sources.Crypto = crypto
	sources.Live = []portsprov.PairSource{providers.NewLiveSource(crypto)}

	if !cfg.HasExchangeRateCredential() {
		logger.Warn("EXCHANGERATE_API_KEY is not set, fiat rates are disabled")
		return sources, nil
	}
	fiat, err := providers.NewExchangeRateAPIClient(cfg.ExchangeRateAPIURL, cfg.ExchangeRateAPIKey, cfg.BaseCurrency, cfg.FiatCurrencies, httpCfg)
	if err != nil {
		return sources, fmt.Errorf("failed to configure ExchangeRate-API client: %w", err)
	}
	sources.Fiat = fiat
	sources.Live = append(sources.Live, providers.NewLiveSource(fiat))
	return sources, nil
}
