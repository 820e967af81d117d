package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/utils"
	"github.com/google/uuid"
)

// UserService handles registration and authentication.
type UserService struct {
	BaseService
	userRepo      portsrepo.UserRepositoryFacade
	portfolioRepo portsrepo.PortfolioRepositoryFacade
}

// UserOption configures a UserService.
type UserOption func(*UserService)

func WithUserClock(now func() time.Time) UserOption {
	return func(s *UserService) {
		s.Now = now
	}
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, portfolioRepo portsrepo.PortfolioRepositoryFacade, opts ...UserOption) *UserService {
	s := &UserService{
		BaseService:   newBaseService(),
		userRepo:      userRepo,
		portfolioRepo: portfolioRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.UserSvcFacade = (*UserService)(nil)

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// Register creates a user and an empty portfolio for it.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", apperrors.ErrValidation)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindUserByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username '%s' is already taken", apperrors.ErrDuplicate, username)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.portfolioRepo.SavePortfolio(ctx, domain.NewPortfolio(user.UserID)); err != nil {
		s.LogError(ctx, err, "Failed to create portfolio", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("username", username))
	return &user, nil
}

// Authenticate checks username and password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", apperrors.ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogWarn(ctx, "Wrong password", slog.String("username", username))
		return nil, fmt.Errorf("%w: wrong password", apperrors.ErrUnauthorized)
	}
	return user, nil
}
