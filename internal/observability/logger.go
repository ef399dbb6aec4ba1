package observability

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxLoggerFieldCapacity = 6

// Global logger instance shared across the application.
// Loggers are not stored in context; only the fields they decorate with are.
//
//nolint:gochecknoglobals // Singleton logger is a standard pattern
var (
	globalLogger *zap.Logger
	loggerMu     sync.RWMutex
)

// InitLogger builds the production logger at the given level and installs it
// as the process-wide base logger.
func InitLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetLogger(logger)

	return logger, nil
}

// SetLogger replaces the base logger. Tests use it to install zap.NewNop or an
// observer core.
func SetLogger(logger *zap.Logger) {
	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
}

func getBaseLogger() *zap.Logger {
	loggerMu.RLock()
	logger := globalLogger
	loggerMu.RUnlock()

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}

// FromContext returns the base logger decorated with the request-scoped
// fields found in ctx.
func FromContext(ctx context.Context) *zap.Logger {
	logger := getBaseLogger()

	fields := make([]zap.Field, 0, maxLoggerFieldCapacity)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}

	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, zap.String("span_id", spanID))
	}

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	if provider := GetProvider(ctx); provider != "" {
		fields = append(fields, zap.String("provider", provider))
	}

	if model := GetModel(ctx); model != "" {
		fields = append(fields, zap.String("model", model))
	}

	return logger.With(fields...)
}
