package domain

import (
	"fmt"
	"sort"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Wallet holds the balance of one currency inside a portfolio.
type Wallet struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"` // never negative
}

// NewWallet creates a wallet with the given non-negative balance.
func NewWallet(code string, balance decimal.Decimal) (*Wallet, error) {
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: wallet balance cannot be negative", apperrors.ErrValidation)
	}
	return &Wallet{CurrencyCode: code, Balance: balance}, nil
}

// Deposit adds a positive amount.
func (w *Wallet) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Withdraw removes a positive amount. The balance is untouched on failure.
func (w *Wallet) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdraw amount must be positive", apperrors.ErrValidation)
	}
	if amount.GreaterThan(w.Balance) {
		return &apperrors.InsufficientFundsError{Code: w.CurrencyCode, Available: w.Balance, Required: amount}
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Portfolio owns the wallets of exactly one user.
type Portfolio struct {
	UserID  string
	Wallets map[string]*Wallet
}

// NewPortfolio returns an empty portfolio.
func NewPortfolio(userID string) *Portfolio {
	return &Portfolio{UserID: userID, Wallets: make(map[string]*Wallet)}
}

// Wallet returns the wallet for code, or nil.
func (p *Portfolio) Wallet(code string) *Wallet {
	return p.Wallets[code]
}

// EnsureWallet returns the wallet for code, creating an empty one when missing.
func (p *Portfolio) EnsureWallet(code string) *Wallet {
	if w, ok := p.Wallets[code]; ok {
		return w
	}
	w := &Wallet{CurrencyCode: code, Balance: decimal.Zero}
	p.Wallets[code] = w
	return w
}

// Codes lists the held currencies in sorted order.
func (p *Portfolio) Codes() []string {
	codes := make([]string, 0, len(p.Wallets))
	for c := range p.Wallets {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// TradeSide is BUY or SELL.
type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// TradeResult describes an applied buy or sell.
type TradeResult struct {
	Side          TradeSide
	Currency      string
	Amount        decimal.Decimal
	Rate          float64
	BaseCurrency  string
	Value         decimal.Decimal // Amount * Rate, in BaseCurrency
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// WalletValuation is one line of a portfolio summary.
type WalletValuation struct {
	CurrencyCode string
	Balance      decimal.Decimal
	Rate         float64
	Value        decimal.Decimal
	Available    bool // false when no rate could be resolved
}

// PortfolioSummary values every wallet of a portfolio in a base currency.
type PortfolioSummary struct {
	UserID       string
	BaseCurrency string
	Wallets      []WalletValuation
	Total        decimal.Decimal
}
