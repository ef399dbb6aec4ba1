package middleware

import (
	"net/http"

	"github.com/davidbz/llmrelay/internal/config"
)

// Middleware decorates the relay's HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain wraps the relay routes. CORS runs outermost and
// answers preflight requests itself; Trace gives the rest a request ID that
// the orchestrator logs carry.
func BuildMiddlewareChain(corsConfig *config.CORSConfig) Middleware {
	return Chain(
		CORS(corsConfig),
		Trace(),
	)
}
