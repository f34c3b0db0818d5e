package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/visionhq/backlog-backend/internal/entity"
)

const (
	minVisionLength = 20
	maxVisionLength = 8000
	maxDomainLength = 200
	maxEpicCount    = 10
)

// Validator validates backlog job submissions
type Validator struct{}

func NewJobValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateSubmitJob(req *entity.SubmitJobRequest) error {
	vision := strings.TrimSpace(req.Vision)
	if vision == "" {
		return fmt.Errorf("%w: vision", entity.ErrMissingField)
	}
	if utf8.RuneCountInString(vision) < minVisionLength {
		return fmt.Errorf("%w: vision must be at least %d characters", entity.ErrInvalidParameter, minVisionLength)
	}
	if utf8.RuneCountInString(vision) > maxVisionLength {
		return fmt.Errorf("%w: vision must be at most %d characters", entity.ErrInvalidParameter, maxVisionLength)
	}

	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		return fmt.Errorf("%w: domain", entity.ErrMissingField)
	}
	if utf8.RuneCountInString(domain) > maxDomainLength {
		return fmt.Errorf("%w: domain must be at most %d characters", entity.ErrInvalidParameter, maxDomainLength)
	}

	if req.Provider != nil {
		if err := entity.ProviderKind(strings.ToUpper(*req.Provider)).Validate(); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
		}
	}

	if req.EpicCount != nil && (*req.EpicCount < 1 || *req.EpicCount > maxEpicCount) {
		return fmt.Errorf("%w: epic_count must be between 1 and %d", entity.ErrInvalidParameter, maxEpicCount)
	}

	return nil
}

func (v *Validator) ValidateSyncJob(req *entity.SyncJobRequest) error {
	if strings.TrimSpace(req.Project) == "" {
		return fmt.Errorf("%w: project", entity.ErrMissingField)
	}

	return nil
}
