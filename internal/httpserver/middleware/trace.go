package middleware

import (
	"net/http"
	"time"

	"github.com/davidbz/llmrelay/internal/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Trace creates a middleware that injects trace ID and request ID into every
// request and logs its completion. An incoming X-Request-Id is kept.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			started := time.Now()

			traceID := observability.GenerateTraceID()
			ctx = observability.WithTraceID(ctx, traceID)

			spanID := observability.GenerateSpanID()
			ctx = observability.WithSpanID(ctx, spanID)

			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = observability.GenerateRequestID()
			}
			ctx = observability.WithRequestID(ctx, requestID)

			w.Header().Set("X-Trace-Id", traceID)
			w.Header().Set("X-Request-Id", requestID)

			logger := observability.FromContext(ctx)
			logger.Info("request started",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("remote_addr", r.RemoteAddr),
			)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.Info("request completed",
				observability.Int("status", rec.status),
				observability.Duration("elapsed", time.Since(started)),
			)
		})
	}
}
