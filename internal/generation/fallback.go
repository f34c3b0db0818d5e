package generation

import (
	"time"

	"github.com/visionhq/backlog-backend/internal/entity"
)

// DefaultFallbackModels is the Ollama fallback chain used when no chain is
// configured. Index 0 is tried first.
func DefaultFallbackModels() []entity.ModelConfig {
	return []entity.ModelConfig{
		{
			Name:        "qwen2.5:14b",
			DisplayName: "Qwen 2.5 14B",
			Timeout:     120 * time.Second,
			MaxAttempts: 3,
			Strengths:   []string{"structured output", "instruction following"},
		},
		{
			Name:        "llama3.1:8b",
			DisplayName: "Llama 3.1 8B",
			Timeout:     90 * time.Second,
			MaxAttempts: 3,
			Strengths:   []string{"speed", "general reasoning"},
		},
		{
			Name:        "mistral:7b",
			DisplayName: "Mistral 7B",
			Timeout:     90 * time.Second,
			MaxAttempts: 2,
			Strengths:   []string{"speed"},
		},
	}
}

// FallbackManager tracks per-model attempt history for one generation cycle
// and decides when to switch to the next model in the chain. Each cycle owns
// its own manager: fallback decisions never leak across requests.
type FallbackManager struct {
	models  []entity.ModelConfig
	history []entity.ModelAttempt
}

func NewFallbackManager(models []entity.ModelConfig) *FallbackManager {
	if len(models) == 0 {
		models = DefaultFallbackModels()
	}
	return &FallbackManager{models: models}
}

// NextModel returns the first model with remaining attempt budget and its
// next attempt number. When every model is exhausted the last model in the
// chain is returned as a terminal fallback; callers treat continued failure
// as fatal at that point.
func (m *FallbackManager) NextModel() (entity.ModelConfig, int) {
	for _, model := range m.models {
		used := m.attemptsFor(model.Name)
		if used < model.MaxAttempts {
			return model, used + 1
		}
	}

	last := m.models[len(m.models)-1]
	return last, m.attemptsFor(last.Name) + 1
}

// RecordAttempt appends one attempt to the cycle history.
func (m *FallbackManager) RecordAttempt(attempt entity.ModelAttempt) {
	m.history = append(m.history, attempt)
}

// ShouldSwitch reports whether the most recent attempt's model has used up
// its attempt budget.
func (m *FallbackManager) ShouldSwitch() bool {
	if len(m.history) == 0 {
		return false
	}
	latest := m.history[len(m.history)-1].ModelName
	for _, model := range m.models {
		if model.Name == latest {
			return m.attemptsFor(latest) >= model.MaxAttempts
		}
	}
	return false
}

// Exhausted reports whether every model in the chain has used up its budget.
func (m *FallbackManager) Exhausted() bool {
	for _, model := range m.models {
		if m.attemptsFor(model.Name) < model.MaxAttempts {
			return false
		}
	}
	return true
}

// Reset clears the attempt history at the start of a new cycle.
func (m *FallbackManager) Reset() {
	m.history = nil
}

// AttemptSummary reports the cycle's attempt history for diagnostics.
type AttemptSummary struct {
	TotalAttempts int      `json:"total_attempts"`
	Models        []string `json:"models"`
	Successes     int      `json:"successes"`
}

func (m *FallbackManager) Summary() AttemptSummary {
	summary := AttemptSummary{TotalAttempts: len(m.history)}
	seen := make(map[string]struct{})
	for _, attempt := range m.history {
		if attempt.Success {
			summary.Successes++
		}
		if _, ok := seen[attempt.ModelName]; !ok {
			seen[attempt.ModelName] = struct{}{}
			summary.Models = append(summary.Models, attempt.ModelName)
		}
	}
	return summary
}

func (m *FallbackManager) attemptsFor(name string) int {
	count := 0
	for _, attempt := range m.history {
		if attempt.ModelName == name {
			count++
		}
	}
	return count
}
