package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	"github.com/tidwall/gjson"
)

// CoinGeckoName is the source label of crypto rates.
const CoinGeckoName = "CoinGecko"

const coinGeckoQuote = "USD"

// coinGeckoIDs maps ticker codes to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
	"LTC": "litecoin",
	"XRP": "ripple",
	"ADA": "cardano",
	"DOT": "polkadot",
}

// CoinGeckoClient fetches <CODE>_USD rates for the configured crypto codes
// with a single /simple/price request.
type CoinGeckoClient struct {
	baseURL string
	codes   []string
	http    HTTPConfig
}

var _ portsprov.RateProvider = (*CoinGeckoClient)(nil)

// NewCoinGeckoClient drops codes without a known CoinGecko id.
func NewCoinGeckoClient(baseURL string, codes []string, httpCfg HTTPConfig) (*CoinGeckoClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: CoinGecko URL must not be empty", apperrors.ErrConfiguration)
	}
	var known []string
	for _, code := range codes {
		if _, ok := coinGeckoIDs[code]; ok {
			known = append(known, code)
		}
	}
	if len(known) == 0 {
		return nil, fmt.Errorf("%w: no supported crypto currencies configured for CoinGecko", apperrors.ErrConfiguration)
	}
	return &CoinGeckoClient{baseURL: baseURL, codes: known, http: httpCfg}, nil
}

func (c *CoinGeckoClient) Name() string { return CoinGeckoName }

func (c *CoinGeckoClient) Supports(pair domain.CurrencyPair) bool {
	for _, code := range c.codes {
		if (pair.From == code && pair.To == coinGeckoQuote) || (pair.From == coinGeckoQuote && pair.To == code) {
			return true
		}
	}
	return false
}

func (c *CoinGeckoClient) requestURL() string {
	ids := make([]string, 0, len(c.codes))
	for _, code := range c.codes {
		ids = append(ids, coinGeckoIDs[code])
	}
	sort.Strings(ids)

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.ToLower(coinGeckoQuote))
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

// FetchRates parses a body shaped like {"bitcoin":{"usd":59337.21},...}.
// Coins missing from the body are skipped; an empty result is malformed.
func (c *CoinGeckoClient) FetchRates(ctx context.Context) (*portsprov.FetchResult, error) {
	resp, err := c.http.get(ctx, CoinGeckoName, c.requestURL())
	if err != nil {
		return nil, err
	}
	if resp.statusCode < 200 || resp.statusCode >= 300 {
		return nil, apperrors.NewProviderError(CoinGeckoName, classifyStatus(resp.statusCode), resp.statusCode,
			fmt.Errorf("unexpected response: %s", truncate(resp.body)))
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, apperrors.NewProviderError(CoinGeckoName, apperrors.ProviderMalformed, resp.statusCode, fmt.Errorf("response is not valid JSON"))
	}

	quoteKey := strings.ToLower(coinGeckoQuote)
	rates := make(map[domain.CurrencyPair]float64, len(c.codes))
	for _, code := range c.codes {
		v := gjson.GetBytes(resp.body, coinGeckoIDs[code]+"."+quoteKey)
		if !v.Exists() || v.Type != gjson.Number || v.Float() <= 0 {
			continue
		}
		rates[domain.CurrencyPair{From: code, To: coinGeckoQuote}] = v.Float()
	}
	if len(rates) == 0 {
		return nil, apperrors.NewProviderError(CoinGeckoName, apperrors.ProviderMalformed, resp.statusCode, fmt.Errorf("no rates in response"))
	}

	return &portsprov.FetchResult{Rates: rates, StatusCode: resp.statusCode, RequestDuration: resp.elapsed}, nil
}

func truncate(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
