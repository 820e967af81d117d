package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// DefaultBaseCurrency values trades when no base currency is configured.
const DefaultBaseCurrency = "USD"

// LedgerService applies buy and sell operations to user portfolios.
type LedgerService struct {
	BaseService
	portfolios   portsrepo.PortfolioRepositoryFacade
	currencies   portssvc.CurrencyReaderSvc
	resolver     portssvc.RateResolverSvc
	baseCurrency string
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

func WithLedgerEvents(e events.Emitter) LedgerOption {
	return func(s *LedgerService) {
		if e != nil {
			s.Events = e
		}
	}
}

func WithLedgerMetrics(m *metrics.Metrics) LedgerOption {
	return func(s *LedgerService) {
		s.Metrics = m
	}
}

func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) {
		s.Now = now
	}
}

// NewLedgerService creates a new LedgerService valuing trades in baseCurrency.
func NewLedgerService(portfolios portsrepo.PortfolioRepositoryFacade, currencies portssvc.CurrencyReaderSvc, resolver portssvc.RateResolverSvc, baseCurrency string, opts ...LedgerOption) *LedgerService {
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}
	s := &LedgerService{
		BaseService:  newBaseService(),
		portfolios:   portfolios,
		currencies:   currencies,
		resolver:     resolver,
		baseCurrency: baseCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// Buy deposits amount of currency, creating the wallet on first purchase.
func (s *LedgerService) Buy(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error) {
	return s.trade(ctx, domain.Buy, userID, currency, amount)
}

// Sell withdraws amount of currency from an existing wallet.
func (s *LedgerService) Sell(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error) {
	return s.trade(ctx, domain.Sell, userID, currency, amount)
}

func (s *LedgerService) trade(ctx context.Context, side domain.TradeSide, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error) {
	s.Emit(ctx, events.TradeStarted, userID, map[string]any{
		"side":     string(side),
		"currency": currency,
		"amount":   amount.String(),
	})

	result, err := s.applyTrade(ctx, side, userID, currency, amount)
	if err != nil {
		s.Metrics.RecordTradeError(string(side), tradeErrorType(err))
		s.Emit(ctx, events.TradeFinished, userID, map[string]any{
			"side":     string(side),
			"currency": currency,
			"amount":   amount.String(),
			"result":   "ERROR",
			"error":    err.Error(),
		})
		return nil, err
	}

	value, _ := result.Value.Float64()
	s.Metrics.RecordTrade(string(side), result.Currency, result.BaseCurrency, value)
	s.Emit(ctx, events.TradeFinished, userID, map[string]any{
		"side":          string(side),
		"currency":      result.Currency,
		"amount":        result.Amount.String(),
		"rate":          result.Rate,
		"base":          result.BaseCurrency,
		"value":         result.Value.StringFixed(2),
		"balance_after": result.BalanceAfter.String(),
		"result":        "OK",
	})
	s.LogInfo(ctx, "Trade applied",
		slog.String("user_id", userID),
		slog.String("side", string(side)),
		slog.String("currency", result.Currency),
		slog.String("amount", result.Amount.String()),
		slog.Float64("rate", result.Rate))
	return result, nil
}

// applyTrade runs the checks in order: amount, code, registry, wallet and
// funds (sell only), rate. Balances change only after every check passed.
func (s *LedgerService) applyTrade(ctx context.Context, side domain.TradeSide, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: 'amount' must be a positive number", apperrors.ErrValidation)
	}
	cur, err := s.currencies.GetCurrencyByCode(ctx, currency)
	if err != nil {
		return nil, err
	}
	code := cur.CurrencyCode

	portfolio, err := s.loadPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	if side == domain.Sell {
		w := portfolio.Wallet(code)
		if w == nil {
			return nil, &apperrors.WalletNotFoundError{Code: code}
		}
		if amount.GreaterThan(w.Balance) {
			return nil, &apperrors.InsufficientFundsError{Code: code, Available: w.Balance, Required: amount}
		}
	}

	rate, err := s.rate(ctx, code)
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet
	if side == domain.Buy {
		wallet = portfolio.EnsureWallet(code)
	} else {
		wallet = portfolio.Wallet(code)
	}
	before := wallet.Balance

	if side == domain.Buy {
		err = wallet.Deposit(amount)
	} else {
		err = wallet.Withdraw(amount)
	}
	if err != nil {
		return nil, err
	}

	if err := s.portfolios.SavePortfolio(ctx, portfolio); err != nil {
		s.LogError(ctx, err, "Failed to save portfolio", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	return &domain.TradeResult{
		Side:          side,
		Currency:      code,
		Amount:        amount,
		Rate:          rate,
		BaseCurrency:  s.baseCurrency,
		Value:         amount.Mul(decimal.NewFromFloat(rate)),
		BalanceBefore: before,
		BalanceAfter:  wallet.Balance,
	}, nil
}

// rate resolves code in the base currency. Provider failures never leave the
// ledger as such; they become RateUnavailableError.
func (s *LedgerService) rate(ctx context.Context, code string) (float64, error) {
	rate, err := s.resolver.GetOrFetchRate(ctx, code, s.baseCurrency)
	if err == nil {
		return rate, nil
	}
	var unavailable *apperrors.RateUnavailableError
	if errors.As(err, &unavailable) {
		return 0, err
	}
	if errors.Is(err, apperrors.ErrProviderFailure) {
		return 0, &apperrors.RateUnavailableError{From: code, To: s.baseCurrency, Cause: err}
	}
	return 0, err
}

func (s *LedgerService) loadPortfolio(ctx context.Context, userID string) (*domain.Portfolio, error) {
	portfolio, err := s.portfolios.FindPortfolioByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.NewPortfolio(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return portfolio, nil
}

// GetPortfolio returns the user's portfolio, empty when none was saved yet.
func (s *LedgerService) GetPortfolio(ctx context.Context, userID string) (*domain.Portfolio, error) {
	return s.loadPortfolio(ctx, userID)
}

// GetPortfolioSummary values every wallet in base. A wallet whose rate cannot
// be resolved is reported without a value and left out of the total.
func (s *LedgerService) GetPortfolioSummary(ctx context.Context, userID, base string) (*domain.PortfolioSummary, error) {
	if base == "" {
		base = s.baseCurrency
	}
	baseCur, err := s.currencies.GetCurrencyByCode(ctx, base)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.loadPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.PortfolioSummary{
		UserID:       userID,
		BaseCurrency: baseCur.CurrencyCode,
		Wallets:      make([]domain.WalletValuation, 0, len(portfolio.Wallets)),
		Total:        decimal.Zero,
	}
	for _, code := range portfolio.Codes() {
		w := portfolio.Wallet(code)
		line := domain.WalletValuation{CurrencyCode: code, Balance: w.Balance}

		rate, err := s.resolver.GetOrFetchRate(ctx, code, baseCur.CurrencyCode)
		if err != nil {
			s.LogWarn(ctx, "Cannot value wallet", slog.String("currency", code), slog.String("error", err.Error()))
		} else {
			line.Rate = rate
			line.Value = w.Balance.Mul(decimal.NewFromFloat(rate))
			line.Available = true
			summary.Total = summary.Total.Add(line.Value)
		}
		summary.Wallets = append(summary.Wallets, line)
	}
	return summary, nil
}

func tradeErrorType(err error) string {
	var (
		insufficient *apperrors.InsufficientFundsError
		noWallet     *apperrors.WalletNotFoundError
		unavailable  *apperrors.RateUnavailableError
		unknown      *apperrors.CurrencyNotFoundError
	)
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_funds"
	case errors.As(err, &noWallet):
		return "wallet_not_found"
	case errors.As(err, &unavailable):
		return "rate_unavailable"
	case errors.As(err, &unknown):
		return "currency_not_found"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
