// Package events publishes structured lifecycle events of trades and rate updates.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Event names.
const (
	TradeStarted       = "trade_started"
	TradeFinished      = "trade_finished"
	RateUpdateStarted  = "rate_update_started"
	RateUpdateFinished = "rate_update_finished"
)

// Event is a named occurrence with free-form properties.
// DistinctID identifies the actor, usually a user id or "system".
type Event struct {
	Name       string
	DistinctID string
	Timestamp  time.Time
	Properties map[string]any
}

// Emitter delivers events. Emit must not block on slow sinks and never fails
// the operation that produced the event.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

// SlogEmitter writes events as structured log lines.
type SlogEmitter struct {
	logger *slog.Logger
}

// NewSlogEmitter creates an emitter logging at info level.
func NewSlogEmitter(logger *slog.Logger) *SlogEmitter {
	return &SlogEmitter{logger: logger}
}

func (e *SlogEmitter) Emit(ctx context.Context, event Event) {
	attrs := make([]any, 0, len(event.Properties)+2)
	attrs = append(attrs, slog.String("event", event.Name), slog.String("distinct_id", event.DistinctID))
	for k, v := range event.Properties {
		attrs = append(attrs, slog.Any(k, v))
	}
	e.logger.InfoContext(ctx, "event", attrs...)
}

// MultiEmitter fans an event out to several emitters in order.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, event Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, event)
		}
	}
}
