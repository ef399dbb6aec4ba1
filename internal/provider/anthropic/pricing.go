package anthropic

import (
	"context"
	"fmt"

	"github.com/davidbz/llmrelay/internal/domain"
)

// USD per 1M tokens.
const (
	haiku45InputCostPer1M  = 1.00
	haiku45OutputCostPer1M = 5.00

	sonnet45InputCostPer1M  = 3.00
	sonnet45OutputCostPer1M = 15.00
)

// RegisterPricing registers Claude model pricing with the registry.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	table := map[string]domain.PricingConfig{
		"claude-haiku-4-5":  {InputCostPer1M: haiku45InputCostPer1M, OutputCostPer1M: haiku45OutputCostPer1M},
		"claude-sonnet-4-5": {InputCostPer1M: sonnet45InputCostPer1M, OutputCostPer1M: sonnet45OutputCostPer1M},
	}

	for model, config := range table {
		route := domain.Route{Provider: providerName, Model: model}
		if err := registry.RegisterPricing(ctx, route, config); err != nil {
			return fmt.Errorf("failed to register pricing for %s: %w", route, err)
		}
	}

	return nil
}
