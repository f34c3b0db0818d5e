package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/visionhq/backlog-backend/internal/metrics"
)

var _ metrics.Store = &MetricsPostgres{}

// MetricsPostgres persists generation cycle and attempt records. Writes are
// best-effort from the tracker's point of view; errors returned here are
// logged by the caller, never propagated into the generation flow.
type MetricsPostgres struct {
	db *pgxpool.Pool
}

func NewMetricsPostgres(db *pgxpool.Pool) *MetricsPostgres {
	return &MetricsPostgres{db: db}
}

func (r *MetricsPostgres) CreateCycle(ctx context.Context, record metrics.CycleRecord) error {
	jobID, err := uuid.Parse(record.JobID)
	if err != nil {
		return fmt.Errorf("invalid job ID: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO generation_cycles (job_id, kind, outcome, started_at)
		VALUES ($1, $2, $3, $4)`,
		pgtype.UUID{Bytes: jobID, Valid: true},
		string(record.Kind),
		record.Outcome,
		record.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}

	return nil
}

func (r *MetricsPostgres) AppendAttempt(ctx context.Context, record metrics.AttemptRecord) error {
	jobID, err := uuid.Parse(record.JobID)
	if err != nil {
		return fmt.Errorf("invalid job ID: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO generation_attempts (job_id, kind, model_name, attempt_number, success,
			quality_score, error_message, prompt_tokens, output_tokens, cost_usd, duration_ms, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pgtype.UUID{Bytes: jobID, Valid: true},
		string(record.Kind),
		record.ModelName,
		record.AttemptNumber,
		record.Success,
		record.QualityScore,
		record.ErrorMessage,
		record.PromptTokens,
		record.OutputTokens,
		record.CostUSD,
		record.Duration.Milliseconds(),
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}

	return nil
}

// FinishCycle closes the most recent open cycle of a job.
func (r *MetricsPostgres) FinishCycle(ctx context.Context, jobID, outcome string, duration time.Duration) error {
	jID, err := uuid.Parse(jobID)
	if err != nil {
		return fmt.Errorf("invalid job ID: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		UPDATE generation_cycles
		SET outcome = $2, duration_ms = $3
		WHERE id = (
			SELECT id FROM generation_cycles
			WHERE job_id = $1 AND outcome = 'running'
			ORDER BY started_at DESC
			LIMIT 1
		)`,
		pgtype.UUID{Bytes: jID, Valid: true},
		outcome,
		duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("finish cycle: %w", err)
	}

	return nil
}
