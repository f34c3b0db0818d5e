package metrics

import (
	"context"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/entity"
	"go.uber.org/zap"
)

// AttemptRecord is one assessment snapshot persisted per generation attempt.
type AttemptRecord struct {
	JobID         string
	Kind          entity.WorkItemKind
	ModelName     string
	AttemptNumber int
	Success       bool
	QualityScore  int
	ErrorMessage  string
	PromptTokens  int
	OutputTokens  int
	CostUSD       float64
	Duration      time.Duration
	RecordedAt    time.Time
}

// CycleRecord summarizes one tracked generation cycle.
type CycleRecord struct {
	JobID     string
	Kind      entity.WorkItemKind
	Outcome   string
	Duration  time.Duration
	StartedAt time.Time
}

// Store persists metric records. The pgx-backed implementation lives in
// internal/repository; NoopStore drops everything.
type Store interface {
	CreateCycle(ctx context.Context, record CycleRecord) error
	AppendAttempt(ctx context.Context, record AttemptRecord) error
	FinishCycle(ctx context.Context, jobID, outcome string, duration time.Duration) error
}

// Tracker records attempt outcomes, tokens and cost per job for post-hoc
// reporting. It is strictly an observer: every failure is logged and
// swallowed so that tracking can never abort generation.
type Tracker struct {
	store      Store
	calculator *Calculator
	provider   string
	logger     *zap.Logger

	// currentKind is set by StartTracking; the loop runs one cycle at a
	// time per tracker instance, each job owns its own tracker.
	currentKind entity.WorkItemKind
}

func NewTracker(store Store, provider string, logger *zap.Logger) *Tracker {
	if store == nil {
		store = NoopStore{}
	}
	return &Tracker{
		store:      store,
		calculator: NewCalculator(),
		provider:   provider,
		logger:     logger,
	}
}

func (t *Tracker) StartTracking(ctx context.Context, jobID string, kind entity.WorkItemKind) {
	t.currentKind = kind
	err := t.store.CreateCycle(ctx, CycleRecord{
		JobID:     jobID,
		Kind:      kind,
		Outcome:   "running",
		StartedAt: time.Now(),
	})
	if err != nil {
		ctxzap.Warn(ctx, "metrics: start tracking failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (t *Tracker) RecordAttempt(ctx context.Context, jobID string, attempt entity.ModelAttempt, assessment *entity.QualityAssessment, usage entity.LLMUsage) {
	record := AttemptRecord{
		JobID:         jobID,
		Kind:          t.currentKind,
		ModelName:     attempt.ModelName,
		AttemptNumber: attempt.AttemptNumber,
		Success:       attempt.Success,
		ErrorMessage:  attempt.ErrorMessage,
		PromptTokens:  usage.PromptTokens,
		OutputTokens:  usage.CompletionTokens,
		CostUSD:       t.calculator.EstimateCost(t.provider, attempt.ModelName, usage.PromptTokens, usage.CompletionTokens),
		Duration:      attempt.Duration,
		RecordedAt:    time.Now(),
	}
	if assessment != nil {
		record.QualityScore = assessment.Score
	} else {
		record.QualityScore = attempt.QualityScore
	}

	if err := t.store.AppendAttempt(ctx, record); err != nil {
		ctxzap.Warn(ctx, "metrics: record attempt failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (t *Tracker) CompleteTracking(ctx context.Context, jobID string, outcome string, duration time.Duration) {
	if err := t.store.FinishCycle(ctx, jobID, outcome, duration); err != nil {
		ctxzap.Warn(ctx, "metrics: complete tracking failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// NoopStore satisfies Store and records nothing. Used in tests and when the
// metrics schema is unavailable.
type NoopStore struct{}

func (NoopStore) CreateCycle(context.Context, CycleRecord) error { return nil }
func (NoopStore) AppendAttempt(context.Context, AttemptRecord) error {
	return nil
}
func (NoopStore) FinishCycle(context.Context, string, string, time.Duration) error {
	return nil
}
