package backlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/pkg/formatter"
	"github.com/visionhq/backlog-backend/internal/pkg/validator"
	"github.com/visionhq/backlog-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	// Terminal jobs never change again, so their lookups can be served from
	// memory while polling clients hammer the status endpoint.
	jobCacheTTL     = 5 * time.Minute
	jobCacheCleanup = 10 * time.Minute
)

// BacklogUsecase implements backlog generation business logic
type BacklogUsecase struct {
	jobRepo          repository.JobRepository
	itemRepo         repository.WorkItemRepository
	generators       map[entity.ProviderKind]Generator
	directModels     map[entity.ProviderKind]string
	validator        *validator.Validator
	formatterFactory *formatter.Factory
	devops           DevOpsConnector
	notifier         Notifier
	genCfg           config.GenerationConfig
	defaultProvider  entity.ProviderKind
	jobCache         *gocache.Cache
	workerSlots      chan struct{}
	logger           *zap.Logger
}

// NewUsecase creates a new backlog use case
func NewUsecase(
	jobRepo repository.JobRepository,
	itemRepo repository.WorkItemRepository,
	generators map[entity.ProviderKind]Generator,
	directModels map[entity.ProviderKind]string,
	validator *validator.Validator,
	formatterFactory *formatter.Factory,
	devops DevOpsConnector,
	notifier Notifier,
	genCfg config.GenerationConfig,
	defaultProvider entity.ProviderKind,
	logger *zap.Logger,
) *BacklogUsecase {
	return &BacklogUsecase{
		jobRepo:          jobRepo,
		itemRepo:         itemRepo,
		generators:       generators,
		directModels:     directModels,
		validator:        validator,
		formatterFactory: formatterFactory,
		devops:           devops,
		notifier:         notifier,
		genCfg:           genCfg,
		defaultProvider:  defaultProvider,
		jobCache:         gocache.New(jobCacheTTL, jobCacheCleanup),
		workerSlots:      make(chan struct{}, genCfg.MaxConcurrentJobs),
		logger:           logger,
	}
}

// SubmitJob validates the request, persists a pending job and starts the
// generation pipeline in the background. The job is returned immediately;
// clients poll GetJob for progress.
func (uc *BacklogUsecase) SubmitJob(ctx context.Context, req *entity.SubmitJobRequest) (*entity.BacklogJob, error) {
	if err := uc.validator.ValidateSubmitJob(req); err != nil {
		return nil, err
	}

	provider := uc.defaultProvider
	if req.Provider != nil {
		provider = entity.ProviderKind(strings.ToUpper(*req.Provider))
	}

	if _, ok := uc.generators[provider]; !ok {
		return nil, fmt.Errorf("%w: provider %s is not configured", entity.ErrInvalidParameter, provider)
	}

	epicCount := uc.genCfg.EpicCount
	if req.EpicCount != nil {
		epicCount = *req.EpicCount
	}

	job := &entity.BacklogJob{
		ID:        uuid.New().String(),
		Status:    entity.JobStatusPending,
		Vision:    strings.TrimSpace(req.Vision),
		Domain:    strings.TrimSpace(req.Domain),
		Provider:  provider,
		EpicCount: epicCount,
	}

	createdJob, err := uc.jobRepo.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	ctxzap.Info(ctx, "backlog job submitted",
		zap.String("job_id", createdJob.ID),
		zap.String("provider", string(provider)),
		zap.Int("epic_count", epicCount),
	)

	// The pipeline outlives the HTTP request, so it runs on a detached
	// context that still carries the logger.
	go uc.runJob(ctxzap.ToContext(context.Background(), uc.logger), createdJob)

	return createdJob, nil
}

// GetJob retrieves a job by ID. Terminal jobs are served from cache.
func (uc *BacklogUsecase) GetJob(ctx context.Context, jobID string) (*entity.BacklogJob, error) {
	if cached, ok := uc.jobCache.Get(jobID); ok {
		return cached.(*entity.BacklogJob), nil
	}

	job, err := uc.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if job.Status.Terminal() {
		uc.jobCache.SetDefault(jobID, job)
	}

	return job, nil
}

// GetWorkItems returns every accepted work item of a job.
func (uc *BacklogUsecase) GetWorkItems(ctx context.Context, jobID string) ([]entity.WorkItem, error) {
	if _, err := uc.jobRepo.GetJobByID(ctx, jobID); err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	items, err := uc.itemRepo.GetWorkItemsByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get work items: %w", err)
	}

	return items, nil
}

// ExportBacklog renders the finished backlog in the requested format and
// returns content, content type and a suggested filename.
func (uc *BacklogUsecase) ExportBacklog(ctx context.Context, jobID string, format entity.ResultFormat) ([]byte, string, string, error) {
	if err := format.Validate(); err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	job, err := uc.GetJob(ctx, jobID)
	if err != nil {
		return nil, "", "", err
	}

	if job.Status != entity.JobStatusDone {
		return nil, "", "", fmt.Errorf("%w: job status is %s", entity.ErrJobNotFinished, job.Status)
	}

	items, err := uc.itemRepo.GetWorkItemsByJobID(ctx, jobID)
	if err != nil {
		return nil, "", "", fmt.Errorf("get work items: %w", err)
	}

	f, err := uc.formatterFactory.Create(format)
	if err != nil {
		return nil, "", "", err
	}

	content, err := f.Format(formatter.RenderBacklog(job, items))
	if err != nil {
		return nil, "", "", fmt.Errorf("format backlog: %w", err)
	}

	filename := fmt.Sprintf("backlog-%s%s", jobID, f.FileExtension())
	return content, f.ContentType(), filename, nil
}

// SyncToAzureDevOps uploads the finished backlog into an Azure DevOps project,
// parents before children. Items already carrying an external id are skipped
// so the operation can be retried after partial failures.
func (uc *BacklogUsecase) SyncToAzureDevOps(ctx context.Context, jobID string, req *entity.SyncJobRequest) (*entity.SyncJobResult, error) {
	if uc.devops == nil {
		return nil, fmt.Errorf("%w: azure devops sync is not configured", entity.ErrInvalidParameter)
	}

	if err := uc.validator.ValidateSyncJob(req); err != nil {
		return nil, err
	}

	job, err := uc.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != entity.JobStatusDone {
		return nil, fmt.Errorf("%w: job status is %s", entity.ErrJobNotFinished, job.Status)
	}

	items, err := uc.itemRepo.GetWorkItemsByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get work items: %w", err)
	}

	result := &entity.SyncJobResult{IDs: make(map[string]int)}
	externalIDs := make(map[string]int)
	for _, item := range items {
		if item.ExternalID != nil {
			externalIDs[item.ID] = *item.ExternalID
			result.IDs[item.ID] = *item.ExternalID
		}
	}

	for _, item := range orderParentsFirst(items) {
		if _, done := externalIDs[item.ID]; done {
			continue
		}

		parentExternal := 0
		if item.ParentID != nil {
			parentExternal = externalIDs[*item.ParentID]
		}

		externalID, err := uc.devops.CreateWorkItem(ctx, req.Project, &item, parentExternal)
		if err != nil {
			return result, fmt.Errorf("sync work item %s: %w", item.ID, err)
		}

		if err := uc.itemRepo.SetExternalID(ctx, item.ID, externalID); err != nil {
			return result, fmt.Errorf("save external id: %w", err)
		}

		externalIDs[item.ID] = externalID
		result.IDs[item.ID] = externalID
		result.Synced++
	}

	ctxzap.Info(ctx, "backlog synced to azure devops",
		zap.String("job_id", jobID),
		zap.String("project", req.Project),
		zap.Int("synced", result.Synced),
	)

	return result, nil
}
