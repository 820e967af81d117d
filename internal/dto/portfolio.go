package dto

import (
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TradeRequest is the body of POST /portfolio/buy and /portfolio/sell.
// Amount accepts a JSON number or string.
type TradeRequest struct {
	Currency string          `json:"currency" binding:"required,currency_code"`
	Amount   decimal.Decimal `json:"amount"`
}

// TradeResponse describes an applied trade.
type TradeResponse struct {
	Side          string          `json:"side"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Rate          float64         `json:"rate"`
	BaseCurrency  string          `json:"baseCurrency"`
	Value         decimal.Decimal `json:"value"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
}

// ToTradeResponse converts a domain.TradeResult to TradeResponse DTO
func ToTradeResponse(r *domain.TradeResult) TradeResponse {
	return TradeResponse{
		Side:          string(r.Side),
		Currency:      r.Currency,
		Amount:        r.Amount,
		Rate:          r.Rate,
		BaseCurrency:  r.BaseCurrency,
		Value:         r.Value.Round(2),
		BalanceBefore: r.BalanceBefore,
		BalanceAfter:  r.BalanceAfter,
	}
}

// PortfolioParams defines query parameters of GET /portfolio.
type PortfolioParams struct {
	Base string `form:"base" binding:"omitempty,currency_code"`
}

// WalletResponse is one wallet of a portfolio summary. Rate and Value are
// omitted when no rate was available.
type WalletResponse struct {
	CurrencyCode string           `json:"currencyCode"`
	Balance      decimal.Decimal  `json:"balance"`
	Rate         *float64         `json:"rate,omitempty"`
	Value        *decimal.Decimal `json:"value,omitempty"`
}

// PortfolioResponse is the body of GET /portfolio.
type PortfolioResponse struct {
	UserID       string           `json:"userID"`
	BaseCurrency string           `json:"baseCurrency"`
	Wallets      []WalletResponse `json:"wallets"`
	Total        decimal.Decimal  `json:"total"`
}

// ToPortfolioResponse converts a domain.PortfolioSummary to PortfolioResponse DTO
func ToPortfolioResponse(s *domain.PortfolioSummary) PortfolioResponse {
	wallets := make([]WalletResponse, len(s.Wallets))
	for i, w := range s.Wallets {
		wallets[i] = WalletResponse{CurrencyCode: w.CurrencyCode, Balance: w.Balance}
		if w.Available {
			rate := w.Rate
			value := w.Value.Round(2)
			wallets[i].Rate = &rate
			wallets[i].Value = &value
		}
	}
	return PortfolioResponse{
		UserID:       s.UserID,
		BaseCurrency: s.BaseCurrency,
		Wallets:      wallets,
		Total:        s.Total.Round(2),
	}
}
