package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// PricingConfig contains route pricing in USD per million tokens.
type PricingConfig struct {
	InputCostPer1M  float64
	OutputCostPer1M float64
}

// CostCalculator calculates cost based on token usage.
type CostCalculator interface {
	// Calculate returns the total cost of usage on route.
	Calculate(ctx context.Context, route Route, usage Usage) (float64, error)
}

// PricingRegistry maintains pricing information per route.
type PricingRegistry interface {
	// GetPricing returns pricing config for a route.
	GetPricing(ctx context.Context, route Route) (PricingConfig, error)

	// RegisterPricing adds pricing for a route.
	RegisterPricing(ctx context.Context, route Route, config PricingConfig) error
}

// InMemoryPricingRegistry stores pricing configs in memory.
type InMemoryPricingRegistry struct {
	mu      sync.RWMutex
	pricing map[Route]PricingConfig
}

// NewInMemoryPricingRegistry creates a new in-memory pricing registry.
func NewInMemoryPricingRegistry() *InMemoryPricingRegistry {
	return &InMemoryPricingRegistry{
		mu:      sync.RWMutex{},
		pricing: make(map[Route]PricingConfig),
	}
}

// GetPricing retrieves pricing for a route.
func (r *InMemoryPricingRegistry) GetPricing(_ context.Context, route Route) (PricingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, exists := r.pricing[route]
	if !exists {
		return PricingConfig{}, fmt.Errorf("pricing not found for %s", route)
	}

	return config, nil
}

// RegisterPricing adds or replaces pricing for a route.
func (r *InMemoryPricingRegistry) RegisterPricing(_ context.Context, route Route, config PricingConfig) error {
	if route.Provider == "" || route.Model == "" {
		return errors.New("route provider and model are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pricing[route] = config
	return nil
}
