package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool used by the store.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxKVStore implements repositories.KVStore with one row per document.
// A single upsert statement replaces the whole document, which gives the
// same all-or-nothing visibility as the file backend.
type PgxKVStore struct {
	db Querier
}

var _ repositories.KVStore = (*PgxKVStore)(nil)

// NewKVStore creates a new PgxKVStore.
func NewKVStore(db Querier) *PgxKVStore {
	return &PgxKVStore{db: db}
}

func (r *PgxKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT data FROM kv_documents WHERE doc_key = $1`

	var data []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document '%s'", apperrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("error reading document '%s': %w", key, err)
	}
	return data, nil
}

func (r *PgxKVStore) Put(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO kv_documents (doc_key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (doc_key) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("error writing document '%s': %w", key, err)
	}
	return nil
}
