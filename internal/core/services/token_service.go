package services

import (
	"context"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/platform/config"
	"github.com/SscSPs/valutatrade_hub/internal/utils"
)

// tokenService issues JWT access tokens for the HTTP API.
type tokenService struct {
	cfg *config.Config
	now func() time.Time
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg, now: time.Now}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	return utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.now(), s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
}
