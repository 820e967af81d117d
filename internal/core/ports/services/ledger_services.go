package services

import (
	"context"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerTradeSvc defines balance-changing operations
type LedgerTradeSvc interface {
	// Buy deposits amount of currency into the user's wallet, creating it on first purchase.
	Buy(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error)

	// Sell withdraws amount of currency from an existing wallet.
	Sell(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error)
}

// LedgerReaderSvc defines read operations on portfolios
type LedgerReaderSvc interface {
	// GetPortfolio returns the user's portfolio.
	GetPortfolio(ctx context.Context, userID string) (*domain.Portfolio, error)

	// GetPortfolioSummary values every wallet in base.
	GetPortfolioSummary(ctx context.Context, userID, base string) (*domain.PortfolioSummary, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerTradeSvc
	LedgerReaderSvc
}
