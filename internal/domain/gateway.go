package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/llmrelay/internal/observability"
)

// GatewayService fronts the orchestrator with a response cache and cost
// accounting.
type GatewayService struct {
	orchestrator   Orchestrator
	costCalculator CostCalculator
	cache          ResponseCache
	cacheTTL       time.Duration
}

// NewGatewayService creates a new gateway service (DI constructor). A nil
// cache disables caching.
func NewGatewayService(
	orchestrator Orchestrator,
	costCalculator CostCalculator,
	cache ResponseCache,
	cacheTTL time.Duration,
) *GatewayService {
	return &GatewayService{
		orchestrator:   orchestrator,
		costCalculator: costCalculator,
		cache:          cache,
		cacheTTL:       cacheTTL,
	}
}

// Generate answers req from cache or through the orchestrator. It returns
// ErrExhausted when no candidate could serve the request.
func (g *GatewayService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", ErrInvalidRequest)
	}

	logger := observability.FromContext(ctx)

	if g.cache != nil {
		cached, cacheErr := g.cache.Get(ctx, req)
		switch {
		case cacheErr == nil && cached != nil:
			logger.Info("cache HIT - returning cached result",
				observability.String("cached_provider", cached.Provider),
				observability.String("cached_model", cached.Model))
			cached.Cached = true
			return cached, nil
		case cacheErr != nil && !errors.Is(cacheErr, ErrCacheMiss):
			logger.Warn("cache get failed, continuing without cache", observability.Error(cacheErr))
		default:
			logger.Debug("cache MISS - calling orchestrator")
		}
	}

	result, err := g.orchestrator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	route := Route{Provider: result.Provider, Model: result.Model}
	if g.costCalculator != nil {
		cost, costErr := g.costCalculator.Calculate(ctx, route, result.Usage)
		if costErr != nil {
			logger.Debug("cost unavailable for route",
				observability.String("route", route.String()),
				observability.Error(costErr))
		}
		result.Usage.Cost = cost
	}

	if g.cache != nil {
		if setErr := g.cache.Set(ctx, req, result, g.cacheTTL); setErr != nil {
			logger.Warn("failed to store in cache", observability.Error(setErr))
		}
	}

	return result, nil
}

// Status returns the orchestrator snapshot.
func (g *GatewayService) Status() Status {
	return g.orchestrator.Status()
}
