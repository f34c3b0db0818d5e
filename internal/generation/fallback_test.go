package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/visionhq/backlog-backend/internal/entity"
)

func testChain() []entity.ModelConfig {
	return []entity.ModelConfig{
		{Name: "model-a", Timeout: time.Second, MaxAttempts: 2},
		{Name: "model-b", Timeout: time.Second, MaxAttempts: 1},
	}
}

func TestFallbackManagerWalksChain(t *testing.T) {
	m := NewFallbackManager(testChain())

	model, attempt := m.NextModel()
	assert.Equal(t, "model-a", model.Name)
	assert.Equal(t, 1, attempt)
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-a"})

	model, attempt = m.NextModel()
	assert.Equal(t, "model-a", model.Name)
	assert.Equal(t, 2, attempt)
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-a"})

	assert.True(t, m.ShouldSwitch())
	assert.False(t, m.Exhausted())

	model, attempt = m.NextModel()
	assert.Equal(t, "model-b", model.Name)
	assert.Equal(t, 1, attempt)
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-b", Success: true})

	assert.True(t, m.Exhausted())
}

func TestFallbackManagerTerminalFallback(t *testing.T) {
	m := NewFallbackManager(testChain())
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-a"})
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-a"})
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-b"})

	// Exhausted chains keep handing out the last model; the caller decides
	// when continued failure becomes fatal.
	model, attempt := m.NextModel()
	assert.Equal(t, "model-b", model.Name)
	assert.Equal(t, 2, attempt)
}

func TestFallbackManagerSummaryAndReset(t *testing.T) {
	m := NewFallbackManager(testChain())
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-a"})
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-a"})
	m.RecordAttempt(entity.ModelAttempt{ModelName: "model-b", Success: true})

	summary := m.Summary()
	assert.Equal(t, 3, summary.TotalAttempts)
	assert.Equal(t, []string{"model-a", "model-b"}, summary.Models)
	assert.Equal(t, 1, summary.Successes)

	m.Reset()
	model, attempt := m.NextModel()
	assert.Equal(t, "model-a", model.Name)
	assert.Equal(t, 1, attempt)
	summary = m.Summary()
	assert.Equal(t, 0, summary.TotalAttempts)
	assert.Empty(t, summary.Models)
}

func TestFallbackManagerDefaultsWhenEmpty(t *testing.T) {
	m := NewFallbackManager(nil)

	model, attempt := m.NextModel()
	assert.Equal(t, DefaultFallbackModels()[0].Name, model.Name)
	assert.Equal(t, 1, attempt)
}
