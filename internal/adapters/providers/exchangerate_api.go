package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	"github.com/tidwall/gjson"
)

// ExchangeRateAPIName is the source label of fiat rates.
const ExchangeRateAPIName = "ExchangeRate-API"

// ExchangeRateAPIClient fetches <BASE>_<FIAT> rates: one unit of base
// expressed in each configured fiat currency.
type ExchangeRateAPIClient struct {
	baseURL string
	apiKey  string
	base    string
	codes   []string
	http    HTTPConfig
}

var _ portsprov.RateProvider = (*ExchangeRateAPIClient)(nil)

// NewExchangeRateAPIClient requires a credential; an empty key is a
// configuration error and no client is created.
func NewExchangeRateAPIClient(baseURL, apiKey, base string, codes []string, httpCfg HTTPConfig) (*ExchangeRateAPIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: EXCHANGERATE_API_KEY is not set", apperrors.ErrConfiguration)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: ExchangeRate-API URL must not be empty", apperrors.ErrConfiguration)
	}
	base, err := domain.NormalizeCurrencyCode(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	return &ExchangeRateAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		base:    base,
		codes:   codes,
		http:    httpCfg,
	}, nil
}

func (c *ExchangeRateAPIClient) Name() string { return ExchangeRateAPIName }

func (c *ExchangeRateAPIClient) Supports(pair domain.CurrencyPair) bool {
	for _, code := range c.codes {
		if (pair.From == c.base && pair.To == code) || (pair.From == code && pair.To == c.base) {
			return true
		}
	}
	return false
}

// FetchRates calls GET {url}/{key}/latest/{BASE}.
func (c *ExchangeRateAPIClient) FetchRates(ctx context.Context) (*portsprov.FetchResult, error) {
	resp, err := c.http.get(ctx, ExchangeRateAPIName, fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, c.base))
	if err != nil {
		return nil, c.redact(err)
	}

	valid := gjson.ValidBytes(resp.body)
	if resp.statusCode < 200 || resp.statusCode >= 300 {
		kind := classifyStatus(resp.statusCode)
		if valid {
			if k, ok := errorTypeKind(gjson.GetBytes(resp.body, "error-type").String()); ok {
				kind = k
			}
		}
		return nil, apperrors.NewProviderError(ExchangeRateAPIName, kind, resp.statusCode, fmt.Errorf("unexpected response: %s", truncate(resp.body)))
	}
	if !valid {
		return nil, apperrors.NewProviderError(ExchangeRateAPIName, apperrors.ProviderMalformed, resp.statusCode, fmt.Errorf("response is not valid JSON"))
	}

	doc := gjson.ParseBytes(resp.body)
	if result := doc.Get("result").String(); result != "success" {
		errType := doc.Get("error-type").String()
		kind, ok := errorTypeKind(errType)
		if !ok {
			kind = apperrors.ProviderUnexpectedStatus
		}
		return nil, apperrors.NewProviderError(ExchangeRateAPIName, kind, resp.statusCode, fmt.Errorf("api error: %s", errType))
	}

	table := doc.Get("conversion_rates")
	if !table.Exists() {
		table = doc.Get("rates")
	}
	if !table.IsObject() {
		return nil, apperrors.NewProviderError(ExchangeRateAPIName, apperrors.ProviderMalformed, resp.statusCode, fmt.Errorf("no rates table in response"))
	}

	rates := make(map[domain.CurrencyPair]float64, len(c.codes))
	for _, code := range c.codes {
		if code == c.base {
			continue
		}
		v := table.Get(code)
		if !v.Exists() || v.Type != gjson.Number || v.Float() <= 0 {
			continue
		}
		rates[domain.CurrencyPair{From: c.base, To: code}] = v.Float()
	}
	if len(rates) == 0 {
		return nil, apperrors.NewProviderError(ExchangeRateAPIName, apperrors.ProviderMalformed, resp.statusCode, fmt.Errorf("none of the configured currencies in response"))
	}

	return &portsprov.FetchResult{Rates: rates, StatusCode: resp.statusCode, RequestDuration: resp.elapsed}, nil
}

// redact keeps the API key out of error messages that embed the request URL.
func (c *ExchangeRateAPIClient) redact(err error) error {
	if pe, ok := err.(*apperrors.ProviderError); ok && pe.Err != nil && strings.Contains(pe.Err.Error(), c.apiKey) {
		return apperrors.NewProviderError(pe.Provider, pe.Kind, pe.StatusCode,
			fmt.Errorf("%s", strings.ReplaceAll(pe.Err.Error(), c.apiKey, "***")))
	}
	return err
}

func errorTypeKind(errType string) (apperrors.ProviderKind, bool) {
	switch errType {
	case "invalid-key", "inactive-account":
		return apperrors.ProviderBadCredentials, true
	case "quota-reached":
		return apperrors.ProviderRateLimited, true
	case "malformed-request", "unsupported-code":
		return apperrors.ProviderUnexpectedStatus, true
	}
	return "", false
}
