package handlers_test

import (
	"context"
	"sync"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock RateResolver ---
type MockRateResolver struct {
	mock.Mock
}

func (m *MockRateResolver) GetOrFetchRate(ctx context.Context, from, to string) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRateResolver) GetRateQuote(ctx context.Context, from, to string) (*domain.RateQuote, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateQuote), args.Error(1)
}

func (m *MockRateResolver) ListRates(ctx context.Context, filter domain.RateListFilter) (*domain.RateListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateListing), args.Error(1)
}

func (m *MockRateResolver) LoadRatesCache(ctx context.Context) (*domain.RateCache, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateCache), args.Error(1)
}

var _ portssvc.RateResolverSvc = (*MockRateResolver)(nil)

// --- Mock RateUpdater ---
type MockRateUpdater struct {
	mock.Mock
}

func (m *MockRateUpdater) RunUpdate(ctx context.Context, source string) (*domain.UpdateResult, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UpdateResult), args.Error(1)
}

var _ portssvc.RateUpdaterSvc = (*MockRateUpdater)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Buy(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error) {
	args := m.Called(ctx, userID, currency, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TradeResult), args.Error(1)
}

func (m *MockLedgerService) Sell(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.TradeResult, error) {
	args := m.Called(ctx, userID, currency, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TradeResult), args.Error(1)
}

func (m *MockLedgerService) GetPortfolio(ctx context.Context, userID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockLedgerService) GetPortfolioSummary(ctx context.Context, userID, base string) (*domain.PortfolioSummary, error) {
	args := m.Called(ctx, userID, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioSummary), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

// amountEq matches a decimal argument by value, ignoring its exponent.
func amountEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
