// Package scheduler refreshes the rates cache on a cron schedule inside the API server.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/robfig/cron/v3"
)

// defaultRunTimeout bounds one scheduled update.
const defaultRunTimeout = 2 * time.Minute

// Scheduler runs RunUpdate for all sources on a cron spec.
type Scheduler struct {
	cron    *cron.Cron
	updater portssvc.RateUpdaterSvc
	spec    string
	logger  *slog.Logger
	timeout time.Duration
}

// New validates spec (standard five-field cron or a descriptor like "@every 5m").
// Overlapping runs are skipped.
func New(updater portssvc.RateUpdaterSvc, spec string, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		return nil, fmt.Errorf("%w: empty update schedule", apperrors.ErrConfiguration)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%w: invalid update schedule '%s': %v", apperrors.ErrConfiguration, spec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", "update_rates"))

	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		updater: updater,
		spec:    spec,
		logger:  logger,
		timeout: defaultRunTimeout,
	}, nil
}

// Start registers the job and starts the cron loop in its own goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule rates update: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Rates update scheduler started", slog.String("schedule", s.spec))
	return nil
}

// Stop stops scheduling and waits for a running update to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Rates update scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Rates update still running at shutdown")
	}
}

// RunOnce performs one update. Failures are logged; the schedule keeps going.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(middleware.WithLogger(ctx, s.logger), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.updater.RunUpdate(ctx, portssvc.UpdateSourceAll)
	if err != nil {
		s.logger.Error("Scheduled rates update failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Scheduled rates update done",
		slog.Int("total_rates", result.TotalRates),
		slog.Any("errors", result.Errors),
		slog.Duration("took", time.Since(start)))
}
