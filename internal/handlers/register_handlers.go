package handlers

import (
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/SscSPs/valutatrade_hub/internal/platform/config"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// RouteOptions carries the optional collaborators of RegisterRoutes.
type RouteOptions struct {
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// Events receives one event per successful authenticated call.
	Events events.Emitter
	// LoginLimit guards POST /auth/login.
	LoginLimit gin.HandlerFunc
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	registerValidators()

	registerOpsRoutes(r, opts.Gatherer)

	// Register public authentication routes
	registerAuthRoutes(r, services.User, services.TokenService, opts.LoginLimit)

	setupAPIV1Routes(r, cfg, services, opts.Events)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	emitter events.Emitter,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	if emitter != nil {
		v1.Use(middleware.EventsMiddleware(emitter))
	}

	registerCurrencyRoutes(v1, services.Currency)
	registerRateRoutes(v1, services.RateResolver, services.RateUpdater)
	registerPortfolioRoutes(v1, services.Ledger)
}
