package openai

import (
	"context"
	"fmt"

	"github.com/davidbz/llmrelay/internal/domain"
)

// USD per 1M tokens.
const (
	gpt4oMiniInputCostPer1M  = 0.15
	gpt4oMiniOutputCostPer1M = 0.60

	gpt4oInputCostPer1M  = 2.50
	gpt4oOutputCostPer1M = 10.00

	gemini25FlashInputCostPer1M  = 0.30
	gemini25FlashOutputCostPer1M = 2.50

	gemini20FlashInputCostPer1M  = 0.10
	gemini20FlashOutputCostPer1M = 0.40

	gemini25ProInputCostPer1M  = 1.25
	gemini25ProOutputCostPer1M = 10.00
)

func pricingTable(providerName string) map[string]domain.PricingConfig {
	switch providerName {
	case GeminiName:
		return map[string]domain.PricingConfig{
			"gemini-2.5-flash":    {InputCostPer1M: gemini25FlashInputCostPer1M, OutputCostPer1M: gemini25FlashOutputCostPer1M},
			"gemini-flash-latest": {InputCostPer1M: gemini25FlashInputCostPer1M, OutputCostPer1M: gemini25FlashOutputCostPer1M},
			"gemini-2.0-flash":    {InputCostPer1M: gemini20FlashInputCostPer1M, OutputCostPer1M: gemini20FlashOutputCostPer1M},
			"gemini-2.5-pro":      {InputCostPer1M: gemini25ProInputCostPer1M, OutputCostPer1M: gemini25ProOutputCostPer1M},
			"gemini-pro-latest":   {InputCostPer1M: gemini25ProInputCostPer1M, OutputCostPer1M: gemini25ProOutputCostPer1M},
		}
	case OpenAIName:
		return map[string]domain.PricingConfig{
			"gpt-4o-mini": {InputCostPer1M: gpt4oMiniInputCostPer1M, OutputCostPer1M: gpt4oMiniOutputCostPer1M},
			"gpt-4o":      {InputCostPer1M: gpt4oInputCostPer1M, OutputCostPer1M: gpt4oOutputCostPer1M},
		}
	default:
		return nil
	}
}

// RegisterPricing registers the model pricing of providerName with the
// registry. Unknown providers register nothing.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry, providerName string) error {
	for model, config := range pricingTable(providerName) {
		route := domain.Route{Provider: providerName, Model: model}
		if err := registry.RegisterPricing(ctx, route, config); err != nil {
			return fmt.Errorf("failed to register pricing for %s: %w", route, err)
		}
	}

	return nil
}
