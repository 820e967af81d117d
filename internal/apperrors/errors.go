package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or wrong credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConfiguration indicates that a component was constructed with incomplete configuration.
var ErrConfiguration = errors.New("configuration error")

// ErrProviderFailure is matched by every ProviderError.
var ErrProviderFailure = errors.New("external rate provider failure")

// ErrRateUnavailable is matched by every RateUnavailableError.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrUpdateFailed indicates that a rates update produced no rates at all.
var ErrUpdateFailed = errors.New("rates update failed")

// InvalidCurrencyCodeError reports a malformed currency code. It never reaches the network.
type InvalidCurrencyCodeError struct {
	Code   string
	Reason string
}

func (e *InvalidCurrencyCodeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid currency code '%s'", e.Code)
	}
	return fmt.Sprintf("invalid currency code '%s': %s", e.Code, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *InvalidCurrencyCodeError) Is(target error) bool { return target == ErrValidation }

// CurrencyNotFoundError reports a well-formed code unknown to the currency registry.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("unknown currency '%s'", e.Code)
}

func (e *CurrencyNotFoundError) Is(target error) bool { return target == ErrNotFound }

// ProviderKind classifies why an external provider call failed.
type ProviderKind string

const (
	ProviderTimeout          ProviderKind = "timeout"
	ProviderConnection       ProviderKind = "connection"
	ProviderRateLimited      ProviderKind = "rate_limited"
	ProviderMalformed        ProviderKind = "malformed_response"
	ProviderBadCredentials   ProviderKind = "bad_credentials"
	ProviderUnexpectedStatus ProviderKind = "unexpected_status"
)

// ProviderError is the single failure type returned by provider clients.
type ProviderError struct {
	Provider   string
	Kind       ProviderKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderFailure }

// NewProviderError builds a ProviderError.
func NewProviderError(provider string, kind ProviderKind, statusCode int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, StatusCode: statusCode, Err: err}
}

// RateUnavailableError means resolution exhausted every source for a pair.
// Cause is non-nil when a fetch was attempted and failed, nil when no source knows the pair.
type RateUnavailableError struct {
	From  string
	To    string
	Cause error
}

func (e *RateUnavailableError) Error() string {
	msg := fmt.Sprintf("rate %s->%s is unavailable, try again later", e.From, e.To)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *RateUnavailableError) Unwrap() error { return e.Cause }

func (e *RateUnavailableError) Is(target error) bool { return target == ErrRateUnavailable }

// FetchAttempted reports whether the failure came from a failed provider call.
func (e *RateUnavailableError) FetchAttempted() bool { return e.Cause != nil }

// WalletNotFoundError is returned when selling a currency the user holds no wallet for.
type WalletNotFoundError struct {
	Code string
}

func (e *WalletNotFoundError) Error() string {
	return fmt.Sprintf("no wallet for '%s': wallets are created automatically on first purchase", e.Code)
}

func (e *WalletNotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientFundsError carries available and required amounts for display.
type InsufficientFundsError struct {
	Code      string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, required %s %s",
		e.Available.String(), e.Code, e.Required.String(), e.Code)
}
