package echo

import (
	"context"
	"fmt"

	"github.com/davidbz/llmrelay/internal/domain"
)

const (
	echo4InputCostPer1M  = 0.0
	echo4OutputCostPer1M = 0.0
)

// RegisterPricing registers echo model pricing with the registry.
// Echo models have zero cost as they are for testing purposes only.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	route := domain.Route{Provider: providerName, Model: modelName}
	if err := registry.RegisterPricing(ctx, route, domain.PricingConfig{
		InputCostPer1M:  echo4InputCostPer1M,
		OutputCostPer1M: echo4OutputCostPer1M,
	}); err != nil {
		return fmt.Errorf("failed to register echo pricing: %w", err)
	}
	return nil
}
