package backlog

import (
	"context"

	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/generation"
)

// Generator runs one quality-gated generation cycle.
type Generator interface {
	Generate(ctx context.Context, req generation.GenerateRequest) ([]generation.AcceptedItem, error)
}

// DevOpsConnector uploads accepted work items to an external tracker.
type DevOpsConnector interface {
	CreateWorkItem(ctx context.Context, project string, item *entity.WorkItem, parentExternalID int) (int, error)
}

// Notifier announces terminal job states.
type Notifier interface {
	JobCompleted(ctx context.Context, job *entity.BacklogJob, itemCount int)
	JobFailed(ctx context.Context, job *entity.BacklogJob, jobErr error)
}
