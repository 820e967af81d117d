package services

import (
	"context"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserRegistrationSvc defines user sign-up
type UserRegistrationSvc interface {
	// Register creates a user with an empty portfolio.
	Register(ctx context.Context, username, password string) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// Authenticate returns apperrors.ErrNotFound for an unknown username and
	// apperrors.ErrUnauthorized for a wrong password.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserRegistrationSvc
	UserAuthSvc
}
