package repositories

import (
	"context"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// PortfolioReader defines read operations for portfolios
type PortfolioReader interface {
	// FindPortfolioByUserID returns the user's portfolio, or apperrors.ErrNotFound.
	FindPortfolioByUserID(ctx context.Context, userID string) (*domain.Portfolio, error)
}

// PortfolioWriter defines write operations for portfolios
type PortfolioWriter interface {
	// SavePortfolio creates or replaces the portfolio of portfolio.UserID.
	SavePortfolio(ctx context.Context, portfolio *domain.Portfolio) error
}

// PortfolioRepositoryFacade combines all portfolio-related repository interfaces
type PortfolioRepositoryFacade interface {
	PortfolioReader
	PortfolioWriter
}
