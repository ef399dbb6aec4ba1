package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/observability"
)

// Response headers describing how a generation was served.
const (
	HeaderCache    = "X-Llmrelay-Cache"
	HeaderProvider = "X-Llmrelay-Provider"
	HeaderAttempts = "X-Llmrelay-Attempts"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
	FastMode  bool     `json:"fast_mode"`
}

// Handler handles HTTP requests.
type Handler struct {
	gateway  *domain.GatewayService
	registry domain.ProviderRegistry
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(gateway *domain.GatewayService, registry domain.ProviderRegistry) *Handler {
	return &Handler{
		gateway:  gateway,
		registry: registry,
	}
}

// HandleGenerate answers a prompt through the gateway.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req domain.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("generate request received",
		observability.Int("prompt_length", len(req.Prompt)),
		observability.Int("max_tokens", req.MaxTokens),
	)

	result, err := h.gateway.Generate(ctx, &req)
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case errors.Is(err, domain.ErrExhausted):
		logger.Warn("generation exhausted all candidates")
		writeError(w, http.StatusServiceUnavailable, "exhausted", err.Error())
		return
	case err != nil:
		logger.Error("generation failed", observability.Error(err))
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}

	logger.Info("generation succeeded",
		observability.String("served_by", result.Provider+"/"+result.Model),
		observability.Int("attempts", result.Attempts),
		observability.Int("tokens", result.Usage.TotalTokens),
		observability.Float64("cost", result.Usage.Cost),
		observability.Bool("cached", result.Cached),
	)

	setResultHeaders(w, result)
	writeJSON(w, http.StatusOK, result)
}

// HandleStatus returns the orchestrator snapshot.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.gateway.Status())
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	providers, err := h.registry.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unhealthy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Providers: providers,
		FastMode:  h.gateway.Status().FastMode,
	})
}

func setResultHeaders(w http.ResponseWriter, result *domain.GenerateResult) {
	if result == nil {
		return
	}

	if result.Cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
		w.Header().Set(HeaderAttempts, fmt.Sprintf("%d", result.Attempts))
	}
	w.Header().Set(HeaderProvider, result.Provider)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it.
		return
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Status: kind})
}
