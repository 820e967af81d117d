package services

import (
	"context"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// TokenSvcFacade defines the interface for access token management.
type TokenSvcFacade interface {
	// GenerateAccessToken issues a signed JWT for user and returns its expiry.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
