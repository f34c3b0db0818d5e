package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/visionhq/backlog-backend/internal/entity"
)

// JobRepository defines the interface for backlog job persistence
type JobRepository interface {
	CreateJob(ctx context.Context, job *entity.BacklogJob) (*entity.BacklogJob, error)
	GetJobByID(ctx context.Context, id string) (*entity.BacklogJob, error)
	UpdateJobStatus(ctx context.Context, id string, status entity.JobStatus) (*entity.BacklogJob, error)
	CompleteJob(ctx context.Context, id string, status entity.JobStatus, jobErr *string) (*entity.BacklogJob, error)
}

var _ JobRepository = &JobPostgres{}

// JobPostgres implements JobRepository using PostgreSQL
type JobPostgres struct {
	db *pgxpool.Pool
}

func NewJobPostgres(db *pgxpool.Pool) *JobPostgres {
	return &JobPostgres{db: db}
}

const jobColumns = "id, status, vision, domain, provider, epic_count, error, created_at, updated_at, completed_at"

func (r *JobPostgres) CreateJob(ctx context.Context, job *entity.BacklogJob) (*entity.BacklogJob, error) {
	jobID, err := uuid.Parse(job.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO backlog_jobs (id, status, vision, domain, provider, epic_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+jobColumns,
		pgtype.UUID{Bytes: jobID, Valid: true},
		string(job.Status),
		job.Vision,
		job.Domain,
		string(job.Provider),
		job.EpicCount,
	)

	created, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	return created, nil
}

func (r *JobPostgres) GetJobByID(ctx context.Context, id string) (*entity.BacklogJob, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT `+jobColumns+` FROM backlog_jobs WHERE id = $1`,
		pgtype.UUID{Bytes: jobID, Valid: true},
	)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return job, nil
}

func (r *JobPostgres) UpdateJobStatus(ctx context.Context, id string, status entity.JobStatus) (*entity.BacklogJob, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE backlog_jobs SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+jobColumns,
		pgtype.UUID{Bytes: jobID, Valid: true},
		string(status),
	)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrJobNotFound
		}
		return nil, fmt.Errorf("update job status: %w", err)
	}

	return job, nil
}

// CompleteJob moves a job into a terminal state and stamps completed_at.
func (r *JobPostgres) CompleteJob(ctx context.Context, id string, status entity.JobStatus, jobErr *string) (*entity.BacklogJob, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	errText := pgtype.Text{}
	if jobErr != nil {
		errText = pgtype.Text{String: *jobErr, Valid: true}
	}

	row := r.db.QueryRow(ctx, `
		UPDATE backlog_jobs
		SET status = $2, error = $3, updated_at = now(), completed_at = now()
		WHERE id = $1
		RETURNING `+jobColumns,
		pgtype.UUID{Bytes: jobID, Valid: true},
		string(status),
		errText,
	)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrJobNotFound
		}
		return nil, fmt.Errorf("complete job: %w", err)
	}

	return job, nil
}

func scanJob(row pgx.Row) (*entity.BacklogJob, error) {
	var (
		id          pgtype.UUID
		status      string
		vision      string
		domain      string
		provider    string
		epicCount   int
		errText     pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)

	err := row.Scan(&id, &status, &vision, &domain, &provider, &epicCount,
		&errText, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	job := &entity.BacklogJob{
		ID:        uuid.UUID(id.Bytes).String(),
		Status:    entity.JobStatus(status),
		Vision:    vision,
		Domain:    domain,
		Provider:  entity.ProviderKind(provider),
		EpicCount: epicCount,
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}

	if errText.Valid {
		msg := errText.String
		job.Error = &msg
	}

	if completedAt.Valid {
		done := completedAt.Time
		job.CompletedAt = &done
	}

	return job, nil
}
