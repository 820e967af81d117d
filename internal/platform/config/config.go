package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds application configuration. It is built once at startup and
// passed to constructors explicitly.
type Config struct {
	DataDir        string
	StorageBackend string
	DatabaseURL    string

	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	RateLimit         string // ulule/limiter format, e.g. "100-M"

	BaseCurrency       string
	RatesTTL           time.Duration
	RequestTimeout     time.Duration
	ProviderInterval   time.Duration // minimum spacing between outbound provider calls
	LiveRateResolution bool
	ExchangeRateAPIKey string
	CoinGeckoURL       string
	ExchangeRateAPIURL string
	CryptoCurrencies   []string
	FiatCurrencies     []string
	UpdateSchedule     string // cron spec, empty disables scheduled updates

	PostHogAPIKey   string
	PostHogEndpoint string
	LogLevel        slog.Level
	SessionFile     string
}

// HasExchangeRateCredential reports whether the fiat provider can be built.
func (c *Config) HasExchangeRateCredential() bool {
	return strings.TrimSpace(c.ExchangeRateAPIKey) != ""
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("STORAGE_BACKEND", StorageFile)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "valutatrade-hub")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("BASE_CURRENCY", "USD")
	v.SetDefault("RATES_TTL", "300s")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("PROVIDER_INTERVAL", "1s")
	v.SetDefault("LIVE_RATE_RESOLUTION", true)
	v.SetDefault("EXCHANGERATE_API_KEY", "")
	v.SetDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3/simple/price")
	v.SetDefault("EXCHANGERATE_API_URL", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("CRYPTO_CURRENCIES", "BTC,ETH,SOL,LTC,XRP,ADA,DOT")
	v.SetDefault("FIAT_CURRENCIES", "EUR,GBP,RUB,JPY,CHF,CNY,CAD,AUD")
	v.SetDefault("UPDATE_SCHEDULE", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_FILE", ".session.json")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DataDir:            v.GetString("DATA_DIR"),
		StorageBackend:     strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		BaseCurrency:       strings.ToUpper(strings.TrimSpace(v.GetString("BASE_CURRENCY"))),
		LiveRateResolution: v.GetBool("LIVE_RATE_RESOLUTION"),
		ExchangeRateAPIKey: strings.TrimSpace(v.GetString("EXCHANGERATE_API_KEY")),
		CoinGeckoURL:       v.GetString("COINGECKO_URL"),
		ExchangeRateAPIURL: strings.TrimRight(v.GetString("EXCHANGERATE_API_URL"), "/"),
		CryptoCurrencies:   splitCodes(v.GetString("CRYPTO_CURRENCIES")),
		FiatCurrencies:     splitCodes(v.GetString("FIAT_CURRENCIES")),
		UpdateSchedule:     strings.TrimSpace(v.GetString("UPDATE_SCHEDULE")),
		PostHogAPIKey:      v.GetString("POSTHOG_API_KEY"),
		PostHogEndpoint:    v.GetString("POSTHOG_ENDPOINT"),
		SessionFile:        v.GetString("SESSION_FILE"),
	}

	var err error
	if cfg.JWTExpiryDuration, err = parseDuration(v, "JWT_EXPIRY_DURATION"); err != nil {
		return nil, err
	}
	if cfg.RatesTTL, err = parseDuration(v, "RATES_TTL"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration(v, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ProviderInterval, err = parseDuration(v, "PROVIDER_INTERVAL"); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("%w: invalid LOG_LEVEL '%s'", apperrors.ErrConfiguration, v.GetString("LOG_LEVEL"))
	}

	switch cfg.StorageBackend {
	case StorageFile:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: PGSQL_URL is required for the postgres storage backend", apperrors.ErrConfiguration)
		}
	default:
		return nil, fmt.Errorf("%w: unknown STORAGE_BACKEND '%s'", apperrors.ErrConfiguration, cfg.StorageBackend)
	}

	if cfg.BaseCurrency == "" {
		return nil, fmt.Errorf("%w: BASE_CURRENCY must not be empty", apperrors.ErrConfiguration)
	}

	if cfg.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET environment variable not set, using default insecure key")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid value for %s ('%s')", apperrors.ErrConfiguration, key, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", apperrors.ErrConfiguration, key)
	}
	return d, nil
}

func splitCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
