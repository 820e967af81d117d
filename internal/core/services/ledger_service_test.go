package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/SscSPs/valutatrade_hub/internal/core/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	mockPortfolio *MockPortfolioRepository
	mockResolver  *MockRateResolver
	emitter       *recordingEmitter
	service       *services.LedgerService
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockPortfolio = new(MockPortfolioRepository)
	suite.mockResolver = new(MockRateResolver)
	suite.emitter = &recordingEmitter{}
	suite.service = services.NewLedgerService(suite.mockPortfolio, services.NewCurrencyService(), suite.mockResolver, "USD",
		services.WithLedgerEvents(suite.emitter))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *LedgerServiceTestSuite) assertDecimal(expected string, actual decimal.Decimal) {
	suite.Truef(dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func (suite *LedgerServiceTestSuite) TestBuyThenOversell() {
	portfolio := domain.NewPortfolio("user1")
	suite.mockPortfolio.On("FindPortfolioByUserID", suite.ctx, "user1").Return(portfolio, nil)
	suite.mockPortfolio.On("SavePortfolio", suite.ctx, portfolio).Return(nil).Once()
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "BTC", "USD").Return(43500.0, nil).Once()

	result, err := suite.service.Buy(suite.ctx, "user1", "btc", dec("0.01"))

	suite.Require().NoError(err)
	suite.Equal(domain.Buy, result.Side)
	suite.Equal("BTC", result.Currency)
	suite.Equal(43500.0, result.Rate)
	suite.Equal("USD", result.BaseCurrency)
	suite.assertDecimal("435.00", result.Value)
	suite.assertDecimal("0", result.BalanceBefore)
	suite.assertDecimal("0.01", result.BalanceAfter)
	suite.assertDecimal("0.01", portfolio.Wallet("BTC").Balance)

	_, err = suite.service.Sell(suite.ctx, "user1", "BTC", dec("0.02"))

	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	suite.Equal("BTC", insufficient.Code)
	suite.assertDecimal("0.01", insufficient.Available)
	suite.assertDecimal("0.02", insufficient.Required)
	suite.assertDecimal("0.01", portfolio.Wallet("BTC").Balance)

	suite.mockResolver.AssertNumberOfCalls(suite.T(), "GetOrFetchRate", 1)
	suite.mockPortfolio.AssertNumberOfCalls(suite.T(), "SavePortfolio", 1)
	suite.Equal([]string{events.TradeStarted, events.TradeFinished, events.TradeStarted, events.TradeFinished}, suite.emitter.names())
	suite.Equal("ERROR", suite.emitter.last().Properties["result"])
}

func (suite *LedgerServiceTestSuite) TestSell_Success() {
	portfolio := domain.NewPortfolio("user1")
	portfolio.EnsureWallet("BTC").Balance = dec("0.05")
	suite.mockPortfolio.On("FindPortfolioByUserID", suite.ctx, "user1").Return(portfolio, nil).Once()
	suite.mockPortfolio.On("SavePortfolio", suite.ctx, portfolio).Return(nil).Once()
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "BTC", "USD").Return(43500.0, nil).Once()

	result, err := suite.service.Sell(suite.ctx, "user1", "BTC", dec("0.02"))

	suite.Require().NoError(err)
	suite.Equal(domain.Sell, result.Side)
	suite.assertDecimal("870", result.Value)
	suite.assertDecimal("0.05", result.BalanceBefore)
	suite.assertDecimal("0.03", result.BalanceAfter)
	suite.mockPortfolio.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestBuy_CreatesPortfolioWhenMissing() {
	suite.mockPortfolio.On("FindPortfolioByUserID", suite.ctx, "user2").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPortfolio.On("SavePortfolio", suite.ctx, mock.MatchedBy(func(p *domain.Portfolio) bool {
		return p.UserID == "user2" && p.Wallet("EUR") != nil
	})).Return(nil).Once()
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "EUR", "USD").Return(1.08, nil).Once()

	result, err := suite.service.Buy(suite.ctx, "user2", "EUR", dec("100"))

	suite.Require().NoError(err)
	suite.assertDecimal("108", result.Value)
	suite.mockPortfolio.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSell_WalletNotFound() {
	suite.mockPortfolio.On("FindPortfolioByUserID", suite.ctx, "user1").Return(domain.NewPortfolio("user1"), nil).Once()

	_, err := suite.service.Sell(suite.ctx, "user1", "ETH", dec("1"))

	var noWallet *apperrors.WalletNotFoundError
	suite.Require().ErrorAs(err, &noWallet)
	suite.Equal("ETH", noWallet.Code)
	suite.mockResolver.AssertNotCalled(suite.T(), "GetOrFetchRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTrade_Validation() {
	tests := []struct {
		name     string
		currency string
		amount   decimal.Decimal
		check    func(error)
	}{
		{name: "zero amount", currency: "BTC", amount: decimal.Zero, check: func(err error) { suite.ErrorIs(err, apperrors.ErrValidation) }},
		{name: "negative amount", currency: "BTC", amount: dec("-1"), check: func(err error) { suite.ErrorIs(err, apperrors.ErrValidation) }},
		{name: "malformed code", currency: "B!C", amount: dec("1"), check: func(err error) {
			var invalid *apperrors.InvalidCurrencyCodeError
			suite.ErrorAs(err, &invalid)
		}},
		{name: "unknown code", currency: "DOGE", amount: dec("1"), check: func(err error) {
			var notFound *apperrors.CurrencyNotFoundError
			suite.ErrorAs(err, &notFound)
		}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.Buy(suite.ctx, "user1", tt.currency, tt.amount)
			tt.check(err)
		})
	}
	suite.mockPortfolio.AssertNotCalled(suite.T(), "FindPortfolioByUserID", mock.Anything, mock.Anything)
	suite.mockResolver.AssertNotCalled(suite.T(), "GetOrFetchRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestBuy_ProviderErrorBecomesRateUnavailable() {
	portfolio := domain.NewPortfolio("user1")
	suite.mockPortfolio.On("FindPortfolioByUserID", suite.ctx, "user1").Return(portfolio, nil).Once()
	providerErr := apperrors.NewProviderError("CoinGecko", apperrors.ProviderTimeout, 0, context.DeadlineExceeded)
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "BTC", "USD").Return(0.0, providerErr).Once()

	_, err := suite.service.Buy(suite.ctx, "user1", "BTC", dec("1"))

	var unavailable *apperrors.RateUnavailableError
	suite.Require().ErrorAs(err, &unavailable)
	suite.Equal("BTC", unavailable.From)
	suite.Equal("USD", unavailable.To)
	suite.ErrorIs(err, apperrors.ErrProviderFailure)
	suite.Nil(portfolio.Wallet("BTC"), "no wallet is created when the rate is unavailable")
	suite.mockPortfolio.AssertNotCalled(suite.T(), "SavePortfolio", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetPortfolioSummary() {
	portfolio := domain.NewPortfolio("user1")
	portfolio.EnsureWallet("USD").Balance = dec("100")
	portfolio.EnsureWallet("BTC").Balance = dec("0.01")
	portfolio.EnsureWallet("ADA").Balance = dec("10")
	suite.mockPortfolio.On("FindPortfolioByUserID", suite.ctx, "user1").Return(portfolio, nil).Once()
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "USD", "USD").Return(1.0, nil).Once()
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "BTC", "USD").Return(43500.0, nil).Once()
	suite.mockResolver.On("GetOrFetchRate", suite.ctx, "ADA", "USD").
		Return(0.0, &apperrors.RateUnavailableError{From: "ADA", To: "USD"}).Once()

	summary, err := suite.service.GetPortfolioSummary(suite.ctx, "user1", "usd")

	suite.Require().NoError(err)
	suite.Equal("USD", summary.BaseCurrency)
	suite.Require().Len(summary.Wallets, 3)
	suite.Equal("ADA", summary.Wallets[0].CurrencyCode)
	suite.False(summary.Wallets[0].Available)
	suite.Equal("BTC", summary.Wallets[1].CurrencyCode)
	suite.assertDecimal("435", summary.Wallets[1].Value)
	suite.True(summary.Wallets[2].Available)
	suite.assertDecimal("535", summary.Total)
}

func (suite *LedgerServiceTestSuite) TestGetPortfolioSummary_UnknownBase() {
	_, err := suite.service.GetPortfolioSummary(suite.ctx, "user1", "XYZ")

	var notFound *apperrors.CurrencyNotFoundError
	suite.ErrorAs(err, &notFound)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
