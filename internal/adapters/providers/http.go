// Package providers contains the HTTP clients of the external rate services
// and the pair sources the resolver consults on a cache miss.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

// HTTPConfig carries the transport settings shared by all provider clients.
type HTTPConfig struct {
	Client         *http.Client
	RateLimiter    *rate.Limiter
	RequestTimeout time.Duration
	Metrics        *metrics.Metrics
}

// DefaultHTTPConfig allows one request per interval with no burst beyond one.
func DefaultHTTPConfig(requestTimeout, interval time.Duration, m *metrics.Metrics) HTTPConfig {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return HTTPConfig{
		Client:         &http.Client{},
		RateLimiter:    rate.NewLimiter(limit, 1),
		RequestTimeout: requestTimeout,
		Metrics:        m,
	}
}

type response struct {
	body       []byte
	statusCode int
	elapsed    time.Duration
}

// get performs one paced, time-bounded GET. Transport failures are mapped to
// ProviderError kinds; the caller classifies non-2xx responses.
func (c HTTPConfig) get(ctx context.Context, provider, url string) (*response, error) {
	if c.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
	}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx); err != nil {
			return nil, apperrors.NewProviderError(provider, apperrors.ProviderTimeout, 0, fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewProviderError(provider, apperrors.ProviderConnection, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		c.Metrics.RecordProviderRequest(provider, 0, false, elapsed.Seconds())
		return nil, apperrors.NewProviderError(provider, classifyTransportError(err), 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		c.Metrics.RecordProviderRequest(provider, resp.StatusCode, false, elapsed.Seconds())
		return nil, apperrors.NewProviderError(provider, classifyTransportError(err), resp.StatusCode, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.Metrics.RecordProviderRequest(provider, resp.StatusCode, ok, elapsed.Seconds())
	return &response{body: body, statusCode: resp.StatusCode, elapsed: elapsed}, nil
}

func classifyTransportError(err error) apperrors.ProviderKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ProviderTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.ProviderTimeout
	}
	return apperrors.ProviderConnection
}

// classifyStatus maps an HTTP status to a provider error kind.
func classifyStatus(status int) apperrors.ProviderKind {
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.ProviderRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ProviderBadCredentials
	default:
		return apperrors.ProviderUnexpectedStatus
	}
}
