package backlog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/generation"
	"github.com/visionhq/backlog-backend/internal/pkg/formatter"
	"github.com/visionhq/backlog-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*entity.BacklogJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*entity.BacklogJob)}
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *entity.BacklogJob) (*entity.BacklogJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *job
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.jobs[job.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeJobRepo) GetJobByID(_ context.Context, id string) (*entity.BacklogJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	out := *job
	return &out, nil
}

func (r *fakeJobRepo) UpdateJobStatus(_ context.Context, id string, status entity.JobStatus) (*entity.BacklogJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	out := *job
	return &out, nil
}

func (r *fakeJobRepo) CompleteJob(_ context.Context, id string, status entity.JobStatus, jobErr *string) (*entity.BacklogJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	now := time.Now()
	job.Status = status
	job.Error = jobErr
	job.UpdatedAt = now
	job.CompletedAt = &now
	out := *job
	return &out, nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items []entity.WorkItem
}

func (r *fakeItemRepo) CreateWorkItem(_ context.Context, item *entity.WorkItem) (*entity.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *item
	stored.CreatedAt = time.Now()
	r.items = append(r.items, stored)
	out := stored
	return &out, nil
}

func (r *fakeItemRepo) GetWorkItemsByJobID(_ context.Context, jobID string) ([]entity.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.WorkItem
	for _, item := range r.items {
		if item.JobID == jobID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) GetWorkItemsByParent(_ context.Context, parentID string) ([]entity.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.WorkItem
	for _, item := range r.items {
		if item.ParentID != nil && *item.ParentID == parentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) SetExternalID(_ context.Context, id string, externalID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			ext := externalID
			r.items[i].ExternalID = &ext
			return nil
		}
	}
	return entity.ErrWorkItemNotFound
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, req generation.GenerateRequest) ([]generation.AcceptedItem, error) {
	items := make([]generation.AcceptedItem, 0, req.TargetCount)
	for i := 0; i < req.TargetCount; i++ {
		items = append(items, generation.AcceptedItem{
			Candidate: &entity.WorkItemCandidate{
				Kind:        req.Kind,
				Title:       fmt.Sprintf("%s %d", req.Kind, i+1),
				Description: "Accepted by the stub generator.",
				Priority:    "high",
			},
			Assessment: entity.QualityAssessment{Rating: entity.RatingExcellent, Score: 90},
		})
	}
	return items, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed int
	failed    int
}

func (n *recordingNotifier) JobCompleted(context.Context, *entity.BacklogJob, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
}

func (n *recordingNotifier) JobFailed(context.Context, *entity.BacklogJob, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed++
}

type fakeDevOps struct {
	mu      sync.Mutex
	nextID  int
	created []createdItem
}

type createdItem struct {
	itemID         string
	parentExternal int
}

func (d *fakeDevOps) CreateWorkItem(_ context.Context, _ string, item *entity.WorkItem, parentExternalID int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.created = append(d.created, createdItem{itemID: item.ID, parentExternal: parentExternalID})
	return d.nextID, nil
}

type fixture struct {
	uc       *BacklogUsecase
	jobs     *fakeJobRepo
	items    *fakeItemRepo
	devops   *fakeDevOps
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		jobs:     newFakeJobRepo(),
		items:    &fakeItemRepo{},
		devops:   &fakeDevOps{},
		notifier: &recordingNotifier{},
	}

	genCfg := config.GenerationConfig{
		EpicCount:         1,
		FeaturesPerEpic:   1,
		StoriesPerFeature: 1,
		TasksPerStory:     1,
		MaxConcurrentJobs: 2,
	}

	f.uc = NewUsecase(
		f.jobs,
		f.items,
		map[entity.ProviderKind]Generator{entity.ProviderMock: stubGenerator{}},
		map[entity.ProviderKind]string{entity.ProviderMock: "mock-model"},
		validator.NewJobValidator(),
		formatter.NewFactory(),
		f.devops,
		f.notifier,
		genCfg,
		entity.ProviderMock,
		zap.NewNop(),
	)
	return f
}

func submitRequest() *entity.SubmitJobRequest {
	return &entity.SubmitJobRequest{
		Vision: "Build a logistics platform that streamlines warehouse operations for carriers.",
		Domain: "logistics",
	}
}

func (f *fixture) waitForTerminal(t *testing.T, jobID string) *entity.BacklogJob {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := f.uc.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state in time")
	return nil
}

func TestSubmitJobRunsPipeline(t *testing.T) {
	f := newFixture(t)

	job, err := f.uc.SubmitJob(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, job.Status)
	assert.Equal(t, entity.ProviderMock, job.Provider)

	done := f.waitForTerminal(t, job.ID)
	require.Equal(t, entity.JobStatusDone, done.Status)
	require.NotNil(t, done.CompletedAt)

	items, err := f.uc.GetWorkItems(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, items, 4)

	byKind := make(map[entity.WorkItemKind]entity.WorkItem)
	for _, item := range items {
		byKind[item.Kind] = item
	}
	require.Len(t, byKind, 4)

	// Epics hang off the unpersisted vision; every deeper level links to the
	// item one level up.
	assert.Nil(t, byKind[entity.KindEpic].ParentID)
	require.NotNil(t, byKind[entity.KindFeature].ParentID)
	assert.Equal(t, byKind[entity.KindEpic].ID, *byKind[entity.KindFeature].ParentID)
	require.NotNil(t, byKind[entity.KindUserStory].ParentID)
	assert.Equal(t, byKind[entity.KindFeature].ID, *byKind[entity.KindUserStory].ParentID)
	require.NotNil(t, byKind[entity.KindTask].ParentID)
	assert.Equal(t, byKind[entity.KindUserStory].ID, *byKind[entity.KindTask].ParentID)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	assert.Equal(t, 1, f.notifier.completed)
	assert.Equal(t, 0, f.notifier.failed)
}

func TestSubmitJobRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t)

	req := submitRequest()
	req.Vision = ""
	_, err := f.uc.SubmitJob(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestSubmitJobRejectsUnconfiguredProvider(t *testing.T) {
	f := newFixture(t)

	req := submitRequest()
	provider := "openai" // valid kind, but no generator wired in this fixture
	req.Provider = &provider
	_, err := f.uc.SubmitJob(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestGetJobUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrJobNotFound)
}

// seedFinishedJob plants a DONE job with an epic and a child feature directly
// in the fakes, bypassing the pipeline.
func (f *fixture) seedFinishedJob(t *testing.T) (*entity.BacklogJob, []entity.WorkItem) {
	t.Helper()
	ctx := context.Background()

	job := &entity.BacklogJob{
		ID:       "job-done",
		Status:   entity.JobStatusPending,
		Vision:   "Streamline warehouse dispatch for regional carriers.",
		Domain:   "logistics",
		Provider: entity.ProviderMock,
	}
	_, err := f.jobs.CreateJob(ctx, job)
	require.NoError(t, err)
	_, err = f.jobs.CompleteJob(ctx, job.ID, entity.JobStatusDone, nil)
	require.NoError(t, err)

	epicID := "epic-1"
	epic := &entity.WorkItem{
		ID: epicID, JobID: job.ID, Kind: entity.KindEpic,
		Title: "Warehouse tracking", Description: "Track inventory.", Priority: "high",
	}
	feature := &entity.WorkItem{
		ID: "feature-1", JobID: job.ID, ParentID: &epicID, Kind: entity.KindFeature,
		Title: "Pallet scanning", Description: "Scan pallets.",
	}
	_, err = f.items.CreateWorkItem(ctx, epic)
	require.NoError(t, err)
	_, err = f.items.CreateWorkItem(ctx, feature)
	require.NoError(t, err)

	return job, []entity.WorkItem{*epic, *feature}
}

func TestSyncToAzureDevOps(t *testing.T) {
	f := newFixture(t)
	job, _ := f.seedFinishedJob(t)

	result, err := f.uc.SyncToAzureDevOps(context.Background(), job.ID, &entity.SyncJobRequest{Project: "demo"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Len(t, result.IDs, 2)

	// Parent uploaded first, child linked to the parent's new external id.
	require.Len(t, f.devops.created, 2)
	assert.Equal(t, "epic-1", f.devops.created[0].itemID)
	assert.Equal(t, 0, f.devops.created[0].parentExternal)
	assert.Equal(t, "feature-1", f.devops.created[1].itemID)
	assert.Equal(t, result.IDs["epic-1"], f.devops.created[1].parentExternal)

	// A second sync finds every item already linked and uploads nothing.
	again, err := f.uc.SyncToAzureDevOps(context.Background(), job.ID, &entity.SyncJobRequest{Project: "demo"})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Synced)
	assert.Len(t, again.IDs, 2)
	assert.Len(t, f.devops.created, 2)
}

func TestSyncRequiresFinishedJob(t *testing.T) {
	f := newFixture(t)

	job := &entity.BacklogJob{ID: "job-pending", Status: entity.JobStatusPending, Provider: entity.ProviderMock}
	_, err := f.jobs.CreateJob(context.Background(), job)
	require.NoError(t, err)

	_, err = f.uc.SyncToAzureDevOps(context.Background(), job.ID, &entity.SyncJobRequest{Project: "demo"})
	assert.ErrorIs(t, err, entity.ErrJobNotFinished)
}

func TestExportBacklogMarkdown(t *testing.T) {
	f := newFixture(t)
	job, _ := f.seedFinishedJob(t)

	content, contentType, filename, err := f.uc.ExportBacklog(context.Background(), job.ID, entity.FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, string(content), "# Product Backlog")
	assert.Contains(t, string(content), "Warehouse tracking")
	assert.Equal(t, "text/markdown; charset=utf-8", contentType)
	assert.Equal(t, "backlog-"+job.ID+".md", filename)
}

func TestExportBacklogRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)
	job, _ := f.seedFinishedJob(t)

	_, _, _, err := f.uc.ExportBacklog(context.Background(), job.ID, entity.ResultFormat("csv"))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestExportBacklogRequiresFinishedJob(t *testing.T) {
	f := newFixture(t)

	job := &entity.BacklogJob{ID: "job-pending", Status: entity.JobStatusPending, Provider: entity.ProviderMock}
	_, err := f.jobs.CreateJob(context.Background(), job)
	require.NoError(t, err)

	_, _, _, err = f.uc.ExportBacklog(context.Background(), job.ID, entity.FormatMarkdown)
	assert.ErrorIs(t, err, entity.ErrJobNotFinished)
}
