package backlog

import (
	"context"

	"github.com/visionhq/backlog-backend/internal/entity"
)

type BacklogUsecase interface {
	SubmitJob(ctx context.Context, req *entity.SubmitJobRequest) (*entity.BacklogJob, error)
	GetJob(ctx context.Context, jobID string) (*entity.BacklogJob, error)
	GetWorkItems(ctx context.Context, jobID string) ([]entity.WorkItem, error)
	ExportBacklog(ctx context.Context, jobID string, format entity.ResultFormat) ([]byte, string, string, error)
	SyncToAzureDevOps(ctx context.Context, jobID string, req *entity.SyncJobRequest) (*entity.SyncJobResult, error)
}
