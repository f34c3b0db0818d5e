package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/visionhq/backlog-backend/internal/entity"
)

func validSubmit() *entity.SubmitJobRequest {
	return &entity.SubmitJobRequest{
		Vision: "Build a logistics platform that streamlines warehouse operations for carriers.",
		Domain: "logistics",
	}
}

func TestValidateSubmitJob(t *testing.T) {
	v := NewJobValidator()

	assert.NoError(t, v.ValidateSubmitJob(validSubmit()))
}

func TestValidateSubmitJobVision(t *testing.T) {
	v := NewJobValidator()

	req := validSubmit()
	req.Vision = "   "
	assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrMissingField)

	req = validSubmit()
	req.Vision = "too short"
	assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrInvalidParameter)

	req = validSubmit()
	req.Vision = strings.Repeat("a", 8001)
	assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrInvalidParameter)
}

func TestValidateSubmitJobDomain(t *testing.T) {
	v := NewJobValidator()

	req := validSubmit()
	req.Domain = ""
	assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrMissingField)

	req = validSubmit()
	req.Domain = strings.Repeat("d", 201)
	assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrInvalidParameter)
}

func TestValidateSubmitJobProvider(t *testing.T) {
	v := NewJobValidator()

	for _, name := range []string{"OPENAI", "openai", "Grok", "ollama", "mock"} {
		req := validSubmit()
		provider := name
		req.Provider = &provider
		assert.NoError(t, v.ValidateSubmitJob(req), "provider %s", name)
	}

	req := validSubmit()
	provider := "gemini"
	req.Provider = &provider
	assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrInvalidParameter)
}

func TestValidateSubmitJobEpicCount(t *testing.T) {
	v := NewJobValidator()

	for _, count := range []int{1, 5, 10} {
		req := validSubmit()
		n := count
		req.EpicCount = &n
		assert.NoError(t, v.ValidateSubmitJob(req), "epic_count %d", count)
	}

	for _, count := range []int{0, -1, 11} {
		req := validSubmit()
		n := count
		req.EpicCount = &n
		assert.ErrorIs(t, v.ValidateSubmitJob(req), entity.ErrInvalidParameter, "epic_count %d", count)
	}
}

func TestValidateSyncJob(t *testing.T) {
	v := NewJobValidator()

	assert.NoError(t, v.ValidateSyncJob(&entity.SyncJobRequest{Project: "backlog-demo"}))
	assert.ErrorIs(t, v.ValidateSyncJob(&entity.SyncJobRequest{Project: "  "}), entity.ErrMissingField)
}
