package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// EventBus implements domain.EventPublisher by writing each event as a
// structured log entry.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus on top of the given logger.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e == nil || e.logger == nil {
		return
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(data)+2)
	fields = append(fields, zap.String("event", eventType))
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
	}

	e.logger.Info("event", fields...)
}
