package events

import (
	"context"
	"log/slog"

	"github.com/posthog/posthog-go"
)

// enqueuer is the part of posthog.Client the emitter needs.
type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// PostHogEmitter forwards events to PostHog. The client batches and sends in
// the background, so Emit does not wait for the network.
type PostHogEmitter struct {
	client enqueuer
	logger *slog.Logger
}

// NewPostHogEmitter returns nil when apiKey is empty so callers can skip the sink.
func NewPostHogEmitter(apiKey, endpoint string, logger *slog.Logger) (*PostHogEmitter, error) {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return nil, nil
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return &PostHogEmitter{client: client, logger: logger}, nil
}

func newPostHogEmitterWithClient(client enqueuer, logger *slog.Logger) *PostHogEmitter {
	return &PostHogEmitter{client: client, logger: logger}
}

func (e *PostHogEmitter) Emit(ctx context.Context, event Event) {
	if e == nil || e.client == nil {
		return
	}
	props := posthog.NewProperties()
	for k, v := range event.Properties {
		props.Set(k, v)
	}
	err := e.client.Enqueue(posthog.Capture{
		DistinctId: event.DistinctID,
		Event:      event.Name,
		Timestamp:  event.Timestamp,
		Properties: props,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to enqueue posthog event", slog.String("event", event.Name), slog.String("error", err.Error()))
	}
}

// Close flushes pending events.
func (e *PostHogEmitter) Close() {
	if e == nil || e.client == nil {
		return
	}
	_ = e.client.Close()
}
