package domain

import (
	"context"
	"errors"
)

const tokensPerMillion = 1_000_000.0

// StandardCostCalculator implements token-based cost calculation.
type StandardCostCalculator struct {
	pricingRegistry PricingRegistry
}

// NewStandardCostCalculator creates a new cost calculator.
func NewStandardCostCalculator(registry PricingRegistry) *StandardCostCalculator {
	return &StandardCostCalculator{
		pricingRegistry: registry,
	}
}

// Calculate computes the total cost based on token usage and route pricing.
// Routes without pricing (free tiers, local providers) cost zero.
func (c *StandardCostCalculator) Calculate(ctx context.Context, route Route, usage Usage) (float64, error) {
	if route.Model == "" {
		return 0, errors.New("model cannot be empty")
	}

	pricing, err := c.pricingRegistry.GetPricing(ctx, route)
	if err != nil {
		//nolint:nilerr // unknown pricing is not a request failure
		return 0, nil
	}

	inputCost := float64(usage.PromptTokens) / tokensPerMillion * pricing.InputCostPer1M
	outputCost := float64(usage.CompletionTokens) / tokensPerMillion * pricing.OutputCostPer1M

	return inputCost + outputCost, nil
}
