package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/handlers"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/SscSPs/valutatrade_hub/internal/platform/bootstrap"
	"github.com/SscSPs/valutatrade_hub/internal/platform/config"
	"github.com/SscSPs/valutatrade_hub/internal/platform/scheduler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	loginRateLimit  = "5-M"
	shutdownTimeout = 15 * time.Second
)

// @title ValutaTrade Hub API
// @version 1.0
// @description Currency wallets, rates cache and simulated trading.

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rt.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	globalLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	loginLimiter, err := middleware.NewMemoryLimiter(loginRateLimit)
	if err != nil {
		logger.Error("Failed to configure login rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()
	r.Use(
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			MaxAge:          12 * time.Hour,
		}),
		middleware.StructuredLoggingMiddleware(logger),
		middleware.RateLimit(globalLimiter),
		gin.Recovery(),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, rt.Services, handlers.RouteOptions{
		Gatherer:   rt.Registry,
		Events:     rt.Events,
		LoginLimit: middleware.GinMiddlewarize(loginLimiter),
	})

	var sched *scheduler.Scheduler
	if cfg.UpdateSchedule != "" {
		sched, err = scheduler.New(rt.Services.RateUpdater, cfg.UpdateSchedule, logger)
		if err != nil {
			logger.Error("Failed to configure rates scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := sched.Start(); err != nil {
			logger.Error("Failed to start rates scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}
