package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/SscSPs/valutatrade_hub/internal/platform/metrics"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Events  events.Emitter
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func newBaseService() BaseService {
	return BaseService{Events: events.NopEmitter{}, Now: time.Now}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a recoverable problem
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Emit publishes an event stamped with the service clock.
func (s *BaseService) Emit(ctx context.Context, name, distinctID string, props map[string]any) {
	if s.Events == nil {
		return
	}
	s.Events.Emit(ctx, events.Event{Name: name, DistinctID: distinctID, Timestamp: s.now().UTC(), Properties: props})
}

func (s *BaseService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
