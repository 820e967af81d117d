package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/adapters/kvstore/filestore"
	"github.com/SscSPs/valutatrade_hub/internal/adapters/repositories"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsprov "github.com/SscSPs/valutatrade_hub/internal/core/ports/providers"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock PairSource ---
type MockPairSource struct {
	mock.Mock
	name string
}

func newMockPairSource(name string) *MockPairSource {
	return &MockPairSource{name: name}
}

func (m *MockPairSource) Name() string { return m.name }

func (m *MockPairSource) FetchPair(ctx context.Context, pair domain.CurrencyPair) (float64, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(float64), args.Error(1)
}

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
	name string
}

func (m *MockRateProvider) Name() string { return m.name }

func (m *MockRateProvider) Supports(pair domain.CurrencyPair) bool {
	args := m.Called(pair)
	return args.Bool(0)
}

func (m *MockRateProvider) FetchRates(ctx context.Context) (*portsprov.FetchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsprov.FetchResult), args.Error(1)
}

// --- Mock RateResolverSvc ---
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

// --- Mock PortfolioRepository ---
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) FindPortfolioByUserID(ctx context.Context, userID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) SavePortfolio(ctx context.Context, portfolio *domain.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// recordingEmitter keeps every emitted event.
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
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

func (r *recordingEmitter) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// testClock is a settable clock shared by the repository and the service under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newFileStore returns a store rooted in a fresh temporary directory.
func newFileStore(t *testing.T) *filestore.Store {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return store
}

func newRateCache(t *testing.T, store *filestore.Store, clock *testClock) *repositories.RateCacheRepository {
	t.Helper()
	repo, err := repositories.NewRateCacheRepository(context.Background(), store, repositories.WithClock(clock.Now))
	require.NoError(t, err)
	return repo
}
