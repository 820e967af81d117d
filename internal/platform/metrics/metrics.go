package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rate resolution outcomes.
const (
	OutcomeHit         = "hit"
	OutcomeReciprocal  = "reciprocal"
	OutcomeFetched     = "fetched"
	OutcomeFallback    = "fallback"
	OutcomeIdentity    = "identity"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds the counters and histograms of the exchange engine.
// All methods are safe to call on a nil receiver, which records nothing.
type Metrics struct {
	RateResolutionsTotal  *prometheus.CounterVec
	ProviderRequestsTotal *prometheus.CounterVec
	ProviderDuration      *prometheus.HistogramVec
	UpdateRunsTotal       *prometheus.CounterVec
	CachedRates           prometheus.Gauge
	TradesTotal           *prometheus.CounterVec
	TradeValueTotal       *prometheus.CounterVec
	TradeErrorsTotal      *prometheus.CounterVec
}

// New registers all metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valutatrade_rate_resolutions_total",
				Help: "Rate lookups by outcome",
			},
			[]string{"outcome"},
		),
		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valutatrade_provider_requests_total",
				Help: "Outbound provider requests by provider and result",
			},
			[]string{"provider", "result"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valutatrade_provider_request_duration_seconds",
				Help:    "Provider request latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
			},
			[]string{"provider"},
		),
		UpdateRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valutatrade_rate_updates_total",
				Help: "Rate update runs by status (ok, partial, failed)",
			},
			[]string{"status"},
		),
		CachedRates: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "valutatrade_cached_rates",
				Help: "Number of pairs in the rate cache after the last update",
			},
		),
		TradesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valutatrade_trades_total",
				Help: "Applied trades by side and currency",
			},
			[]string{"side", "currency"},
		),
		TradeValueTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valutatrade_trade_value_total",
				Help: "Sum of trade values in the base currency",
			},
			[]string{"side", "base_currency"},
		),
		TradeErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valutatrade_trade_errors_total",
				Help: "Rejected trades by side and error type",
			},
			[]string{"side", "error_type"},
		),
	}
}

// RecordResolution counts one rate lookup.
func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.RateResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordProviderRequest counts a provider call and observes its latency.
func (m *Metrics) RecordProviderRequest(provider string, statusCode int, ok bool, durationSeconds float64) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	} else if statusCode > 0 {
		result = strconv.Itoa(statusCode)
	}
	m.ProviderRequestsTotal.WithLabelValues(provider, result).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordUpdate counts an update run and sets the cache size gauge.
func (m *Metrics) RecordUpdate(status string, cachedPairs int) {
	if m == nil {
		return
	}
	m.UpdateRunsTotal.WithLabelValues(status).Inc()
	if cachedPairs >= 0 {
		m.CachedRates.Set(float64(cachedPairs))
	}
}

// RecordTrade counts an applied trade.
func (m *Metrics) RecordTrade(side, currency, baseCurrency string, value float64) {
	if m == nil {
		return
	}
	m.TradesTotal.WithLabelValues(side, currency).Inc()
	m.TradeValueTotal.WithLabelValues(side, baseCurrency).Add(value)
}

// RecordTradeError counts a rejected trade.
func (m *Metrics) RecordTradeError(side, errorType string) {
	if m == nil {
		return
	}
	m.TradeErrorsTotal.WithLabelValues(side, errorType).Inc()
}
