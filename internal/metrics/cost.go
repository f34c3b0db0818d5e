package metrics

import "strings"

// PricingTable holds per-million-token prices in USD.
type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

// Self-hosted Ollama models carry no per-token cost, so they are absent here
// and estimate to zero.
var pricing = map[string]map[string]PricingTable{
	"openai": {
		"gpt-4o":      {InputPricePerMillion: 2.50, OutputPricePerMillion: 10.00},
		"gpt-4o-mini": {InputPricePerMillion: 0.15, OutputPricePerMillion: 0.60},
		"gpt-4-turbo": {InputPricePerMillion: 10.00, OutputPricePerMillion: 30.00},
	},
	"grok": {
		"grok-2":      {InputPricePerMillion: 2.00, OutputPricePerMillion: 10.00},
		"grok-2-mini": {InputPricePerMillion: 0.30, OutputPricePerMillion: 0.50},
	},
}

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// EstimateCost returns the USD cost of one call; unknown provider/model
// combinations estimate to zero rather than failing.
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	providerPricing, ok := pricing[provider]
	if !ok {
		return 0
	}

	table, ok := providerPricing[model]
	if !ok {
		// Versioned model names still match their base entry.
		for name, prices := range providerPricing {
			if strings.Contains(model, name) {
				table = prices
				break
			}
		}
		if table.InputPricePerMillion == 0 && table.OutputPricePerMillion == 0 {
			return 0
		}
	}

	inputCost := float64(inputTokens) / 1_000_000 * table.InputPricePerMillion
	outputCost := float64(outputTokens) / 1_000_000 * table.OutputPricePerMillion
	return inputCost + outputCost
}
