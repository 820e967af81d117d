package pgsql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/valutatrade_hub/internal/adapters/database/pgsql"
	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return pgconn.NewCommandTag("INSERT 0 1"), called.Error(0)
}

func (m *MockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

type stubRow struct {
	data []byte
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	return nil
}

func TestPgxKVStore_Get(t *testing.T) {
	ctx := context.Background()
	q := new(MockQuerier)
	q.On("QueryRow", ctx, mock.Anything, []any{"rates"}).Return(stubRow{data: []byte(`{"pairs":{}}`)}).Once()
	q.On("QueryRow", ctx, mock.Anything, []any{"users"}).Return(stubRow{err: pgx.ErrNoRows}).Once()
	q.On("QueryRow", ctx, mock.Anything, []any{"portfolios"}).Return(stubRow{err: errors.New("conn reset")}).Once()

	store := pgsql.NewKVStore(q)

	data, err := store.Get(ctx, "rates")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pairs":{}}`, string(data))

	_, err = store.Get(ctx, "users")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.Get(ctx, "portfolios")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	q.AssertExpectations(t)
}

func TestPgxKVStore_Put(t *testing.T) {
	ctx := context.Background()
	q := new(MockQuerier)
	payload := []byte(`{"records":[]}`)
	q.On("Exec", ctx, mock.Anything, []any{"exchange_rates", payload}).Return(nil).Once()

	require.NoError(t, pgsql.NewKVStore(q).Put(ctx, "exchange_rates", payload))
	q.AssertExpectations(t)
}
