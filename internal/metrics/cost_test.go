package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCostKnownModel(t *testing.T) {
	c := NewCalculator()

	// 1M input at $2.50 plus 0.5M output at $10.00.
	cost := c.EstimateCost("openai", "gpt-4o", 1_000_000, 500_000)
	assert.InDelta(t, 7.50, cost, 1e-9)
}

func TestEstimateCostCaseInsensitive(t *testing.T) {
	c := NewCalculator()

	assert.InDelta(t, c.EstimateCost("openai", "gpt-4o", 1000, 1000),
		c.EstimateCost("OpenAI", "GPT-4o", 1000, 1000), 1e-12)
}

func TestEstimateCostVersionedModelName(t *testing.T) {
	c := NewCalculator()

	base := c.EstimateCost("openai", "gpt-4-turbo", 10_000, 10_000)
	versioned := c.EstimateCost("openai", "gpt-4-turbo-2024-04-09", 10_000, 10_000)
	assert.Greater(t, base, 0.0)
	assert.InDelta(t, base, versioned, 1e-12)

	assert.InDelta(t,
		c.EstimateCost("grok", "grok-2", 10_000, 10_000),
		c.EstimateCost("grok", "grok-2-1212", 10_000, 10_000), 1e-12)
}

func TestEstimateCostUnknown(t *testing.T) {
	c := NewCalculator()

	assert.Zero(t, c.EstimateCost("ollama", "qwen2.5:14b", 1_000_000, 1_000_000))
	assert.Zero(t, c.EstimateCost("openai", "davinci-legacy", 1_000_000, 1_000_000))
	assert.Zero(t, c.EstimateCost("", "", 1000, 1000))
}

func TestEstimateCostZeroTokens(t *testing.T) {
	c := NewCalculator()

	assert.Zero(t, c.EstimateCost("openai", "gpt-4o", 0, 0))
}
