package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/llmrelay/internal/observability"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should write events as structured entries", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		bus := observability.NewEventBus(zap.New(core))
		ctx := observability.WithRequestID(context.Background(), "req-1")

		bus.Publish(ctx, "cooldown.set", map[string]interface{}{
			"scope":   "model:gemini/gemini-2.5-flash",
			"seconds": 18.36,
		})

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		require.Equal(t, "cooldown.set", fields["event"])
		require.Equal(t, "req-1", fields["request_id"])
		require.Equal(t, "model:gemini/gemini-2.5-flash", fields["scope"])
	})

	t.Run("should tolerate a nil bus", func(t *testing.T) {
		var bus *observability.EventBus

		require.NotPanics(t, func() {
			bus.Publish(context.Background(), "noop", nil)
		})
	})
}

func TestFromContext(t *testing.T) {
	t.Run("should decorate entries with request fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		observability.SetLogger(zap.New(core))
		t.Cleanup(func() { observability.SetLogger(nil) })

		ctx := observability.WithTraceID(context.Background(), "trace-1")
		ctx = observability.WithProvider(ctx, "gemini")
		ctx = observability.WithModel(ctx, "gemini-2.5-flash")

		observability.FromContext(ctx).Info("attempt")

		fields := logs.All()[0].ContextMap()
		require.Equal(t, "trace-1", fields["trace_id"])
		require.Equal(t, "gemini", fields["provider"])
		require.Equal(t, "gemini-2.5-flash", fields["model"])
		require.NotContains(t, fields, "request_id")
	})

	t.Run("should reject unknown levels", func(t *testing.T) {
		_, err := observability.InitLogger("chatty")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("should generate otel sized ids", func(t *testing.T) {
		require.Len(t, observability.GenerateTraceID(), 32)
		require.Len(t, observability.GenerateSpanID(), 16)
		require.Len(t, observability.GenerateRequestID(), 36)
	})
}
