package repositories

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
)

// NewRepositoryProvider builds every document repository on top of one KVStore.
// The rate cache is loaded eagerly.
func NewRepositoryProvider(ctx context.Context, store portsrepo.KVStore, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	rateCacheRepo, err := NewRateCacheRepository(ctx, store, WithLogger(logger))
	if err != nil {
		return portsrepo.RepositoryProvider{}, err
	}

	return portsrepo.RepositoryProvider{
		RateCacheRepo: rateCacheRepo,
		HistoryRepo:   NewHistoryRepository(store),
		PortfolioRepo: NewPortfolioRepository(store),
		UserRepo:      NewUserRepository(store),
	}, nil
}
