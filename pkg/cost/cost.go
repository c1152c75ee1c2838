// Package cost estimates the spend of the pipeline's model calls so
// the hotel can watch what the assistant costs to run. Estimates come
// from the provider's published per-token pricing and the usage counts
// the API returns.
package cost

import (
	"strings"
	"sync"
)

// PricingModel defines the cost per 1M tokens (standard industry pricing unit)
type PricingModel struct {
	InputPrice  float64 // Cost per 1M input tokens
	OutputPrice float64 // Cost per 1M output tokens
}

// Calculator maps model names to pricing.
type Calculator struct {
	mu     sync.RWMutex
	prices map[string]PricingModel
}

// NewCalculator creates a calculator with default pricing.
func NewCalculator() *Calculator {
	c := &Calculator{
		prices: make(map[string]PricingModel),
	}
	c.loadDefaults()
	return c
}

// SetPrice overrides or adds pricing for a model.
func (c *Calculator) SetPrice(model string, price PricingModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[strings.ToLower(model)] = price
}

// Cost returns the estimated cost in USD for one call. Gateway model
// IDs with a provider prefix ("openai/gpt-4o-mini") fall back to the
// bare model name; unknown models cost zero.
func (c *Calculator) Cost(model string, promptTokens, completionTokens int) float64 {
	name := strings.ToLower(model)

	c.mu.RLock()
	price, ok := c.prices[name]
	if !ok {
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			price, ok = c.prices[name[idx+1:]]
		}
	}
	if !ok {
		if strings.HasPrefix(name, "gpt-4") {
			price = c.prices["gpt-4o"]
		} else if strings.HasPrefix(name, "gpt-3.5") {
			price = c.prices["gpt-3.5-turbo"]
		}
	}
	c.mu.RUnlock()

	inputCost := (float64(promptTokens) / 1_000_000.0) * price.InputPrice
	outputCost := (float64(completionTokens) / 1_000_000.0) * price.OutputPrice

	return inputCost + outputCost
}

// loadDefaults loads pricing for the models the assistant runs on.
func (c *Calculator) loadDefaults() {
	c.prices["gpt-4o"] = PricingModel{InputPrice: 2.50, OutputPrice: 10.00}
	c.prices["gpt-4o-mini"] = PricingModel{InputPrice: 0.15, OutputPrice: 0.60}
	c.prices["gpt-4-turbo"] = PricingModel{InputPrice: 10.00, OutputPrice: 30.00}
	c.prices["gpt-3.5-turbo"] = PricingModel{InputPrice: 0.50, OutputPrice: 1.50}
	c.prices["gpt-4"] = c.prices["gpt-4o"]

	// Embedding models bill input only.
	c.prices["text-embedding-3-small"] = PricingModel{InputPrice: 0.02}
	c.prices["text-embedding-3-large"] = PricingModel{InputPrice: 0.13}
	c.prices["text-embedding-ada-002"] = PricingModel{InputPrice: 0.10}
}
