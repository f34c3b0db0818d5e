package backlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/generation"
	"github.com/visionhq/backlog-backend/internal/quality"
	"go.uber.org/zap"
)

// stage describes one level of the backlog hierarchy pipeline.
type stage struct {
	kind   entity.WorkItemKind
	status entity.JobStatus
}

var pipelineStages = []stage{
	{kind: entity.KindEpic, status: entity.JobStatusGeneratingEpics},
	{kind: entity.KindFeature, status: entity.JobStatusGeneratingFeatures},
	{kind: entity.KindUserStory, status: entity.JobStatusGeneratingStories},
	{kind: entity.KindTask, status: entity.JobStatusGeneratingTasks},
}

// runJob drives the whole pipeline for one job. It owns a worker slot for its
// entire lifetime and always leaves the job in a terminal state.
func (uc *BacklogUsecase) runJob(ctx context.Context, job *entity.BacklogJob) {
	uc.workerSlots <- struct{}{}
	defer func() { <-uc.workerSlots }()

	started := time.Now()

	if err := uc.generateBacklog(ctx, job); err != nil {
		msg := err.Error()
		failedJob, saveErr := uc.jobRepo.CompleteJob(ctx, job.ID, entity.JobStatusError, &msg)
		if saveErr != nil {
			ctxzap.Error(ctx, "save failed job state", zap.String("job_id", job.ID), zap.Error(saveErr))
			failedJob = job
		}

		ctxzap.Error(ctx, "backlog job failed",
			zap.String("job_id", job.ID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		uc.notifier.JobFailed(ctx, failedJob, err)
		return
	}

	doneJob, err := uc.jobRepo.CompleteJob(ctx, job.ID, entity.JobStatusDone, nil)
	if err != nil {
		ctxzap.Error(ctx, "save completed job state", zap.String("job_id", job.ID), zap.Error(err))
		doneJob = job
	}

	items, err := uc.itemRepo.GetWorkItemsByJobID(ctx, job.ID)
	if err != nil {
		ctxzap.Warn(ctx, "count generated items", zap.String("job_id", job.ID), zap.Error(err))
	}

	ctxzap.Info(ctx, "backlog job completed",
		zap.String("job_id", job.ID),
		zap.Int("item_count", len(items)),
		zap.Duration("elapsed", time.Since(started)),
	)
	uc.notifier.JobCompleted(ctx, doneJob, len(items))
}

// generateBacklog walks the hierarchy top-down: epics from the vision, then
// one generation cycle per parent on every deeper level. A failed cycle fails
// the whole job; partial levels are never persisted as DONE.
func (uc *BacklogUsecase) generateBacklog(ctx context.Context, job *entity.BacklogJob) error {
	generator := uc.generators[job.Provider]

	// Vision is the root of the parent chain but is never persisted itself.
	parents := []entity.WorkItem{{
		Kind:        entity.KindVision,
		Title:       "Product Vision",
		Description: job.Vision,
	}}

	for _, st := range pipelineStages {
		if _, err := uc.jobRepo.UpdateJobStatus(ctx, job.ID, st.status); err != nil {
			return fmt.Errorf("update job status: %w", err)
		}

		var levelItems []entity.WorkItem
		for _, parent := range parents {
			accepted, err := generator.Generate(ctx, generation.GenerateRequest{
				JobID:       job.ID,
				Kind:        st.kind,
				Domain:      job.Domain,
				Vision:      job.Vision,
				Parent:      parentContext(&parent),
				TargetCount: uc.targetCount(st.kind, job),
				Provider:    job.Provider,
				Model:       uc.directModels[job.Provider],
			})
			if err != nil {
				return fmt.Errorf("generate %s level: %w", st.kind, err)
			}

			saved, err := uc.persistAccepted(ctx, job.ID, &parent, accepted)
			if err != nil {
				return err
			}
			levelItems = append(levelItems, saved...)
		}

		ctxzap.Info(ctx, "backlog level generated",
			zap.String("job_id", job.ID),
			zap.String("kind", string(st.kind)),
			zap.Int("count", len(levelItems)),
		)

		parents = levelItems
	}

	return nil
}

func (uc *BacklogUsecase) persistAccepted(ctx context.Context, jobID string, parent *entity.WorkItem, accepted []generation.AcceptedItem) ([]entity.WorkItem, error) {
	var parentID *string
	if parent.ID != "" {
		id := parent.ID
		parentID = &id
	}

	saved := make([]entity.WorkItem, 0, len(accepted))
	for position, item := range accepted {
		workItem := item.Candidate.ToWorkItem(jobID, parentID, position, item.Assessment)
		workItem.ID = uuid.New().String()

		created, err := uc.itemRepo.CreateWorkItem(ctx, workItem)
		if err != nil {
			return nil, fmt.Errorf("persist work item: %w", err)
		}
		saved = append(saved, *created)
	}

	return saved, nil
}

func (uc *BacklogUsecase) targetCount(kind entity.WorkItemKind, job *entity.BacklogJob) int {
	switch kind {
	case entity.KindEpic:
		return job.EpicCount
	case entity.KindFeature:
		return uc.genCfg.FeaturesPerEpic
	case entity.KindUserStory:
		return uc.genCfg.StoriesPerFeature
	case entity.KindTask:
		return uc.genCfg.TasksPerStory
	default:
		return 1
	}
}

func parentContext(parent *entity.WorkItem) *quality.ParentContext {
	return &quality.ParentContext{
		Kind:        parent.Kind,
		Title:       parent.Title,
		Description: parent.Description,
	}
}

// orderParentsFirst returns items sorted so that every parent precedes its
// children, which is the order external trackers require for linking.
func orderParentsFirst(items []entity.WorkItem) []entity.WorkItem {
	byParent := make(map[string][]entity.WorkItem)
	var roots []entity.WorkItem
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		byParent[*item.ParentID] = append(byParent[*item.ParentID], item)
	}

	ordered := make([]entity.WorkItem, 0, len(items))
	var walk func(item entity.WorkItem)
	walk = func(item entity.WorkItem) {
		ordered = append(ordered, item)
		for _, child := range byParent[item.ID] {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}

	return ordered
}
