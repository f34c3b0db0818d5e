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

// WorkItemRepository defines the interface for work item persistence
type WorkItemRepository interface {
	CreateWorkItem(ctx context.Context, item *entity.WorkItem) (*entity.WorkItem, error)
	GetWorkItemsByJobID(ctx context.Context, jobID string) ([]entity.WorkItem, error)
	GetWorkItemsByParent(ctx context.Context, parentID string) ([]entity.WorkItem, error)
	SetExternalID(ctx context.Context, id string, externalID int) error
}

var _ WorkItemRepository = &WorkItemPostgres{}

// WorkItemPostgres implements WorkItemRepository using PostgreSQL
type WorkItemPostgres struct {
	db *pgxpool.Pool
}

func NewWorkItemPostgres(db *pgxpool.Pool) *WorkItemPostgres {
	return &WorkItemPostgres{db: db}
}

const workItemColumns = `id, job_id, parent_id, kind, title, description, priority,
	complexity, acceptance_criteria, quality_score, quality_rating, position, external_id, created_at`

func (r *WorkItemPostgres) CreateWorkItem(ctx context.Context, item *entity.WorkItem) (*entity.WorkItem, error) {
	itemID, err := uuid.Parse(item.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid work item ID: %w", err)
	}

	jobID, err := uuid.Parse(item.JobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	parentID := pgtype.UUID{}
	if item.ParentID != nil {
		parentUUID, err := uuid.Parse(*item.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent ID: %w", err)
		}
		parentID = pgtype.UUID{Bytes: parentUUID, Valid: true}
	}

	criteria := item.AcceptanceCriteria
	if criteria == nil {
		criteria = []string{}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO work_items (id, job_id, parent_id, kind, title, description, priority,
			complexity, acceptance_criteria, quality_score, quality_rating, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+workItemColumns,
		pgtype.UUID{Bytes: itemID, Valid: true},
		pgtype.UUID{Bytes: jobID, Valid: true},
		parentID,
		string(item.Kind),
		item.Title,
		item.Description,
		item.Priority,
		item.Complexity,
		criteria,
		item.QualityScore,
		item.QualityRating,
		item.Position,
	)

	created, err := scanWorkItem(row)
	if err != nil {
		return nil, fmt.Errorf("create work item: %w", err)
	}

	return created, nil
}

// GetWorkItemsByJobID returns every item of a job ordered depth-first friendly:
// by kind depth first via created_at, then position.
func (r *WorkItemPostgres) GetWorkItemsByJobID(ctx context.Context, jobID string) ([]entity.WorkItem, error) {
	jID, err := uuid.Parse(jobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+workItemColumns+` FROM work_items
		WHERE job_id = $1
		ORDER BY created_at, position`,
		pgtype.UUID{Bytes: jID, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("get work items: %w", err)
	}
	defer rows.Close()

	return collectWorkItems(rows)
}

func (r *WorkItemPostgres) GetWorkItemsByParent(ctx context.Context, parentID string) ([]entity.WorkItem, error) {
	pID, err := uuid.Parse(parentID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+workItemColumns+` FROM work_items
		WHERE parent_id = $1
		ORDER BY position`,
		pgtype.UUID{Bytes: pID, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("get work items by parent: %w", err)
	}
	defer rows.Close()

	return collectWorkItems(rows)
}

func (r *WorkItemPostgres) SetExternalID(ctx context.Context, id string, externalID int) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid work item ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE work_items SET external_id = $2 WHERE id = $1`,
		pgtype.UUID{Bytes: itemID, Valid: true},
		externalID,
	)
	if err != nil {
		return fmt.Errorf("set external id: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrWorkItemNotFound
	}

	return nil
}

func collectWorkItems(rows pgx.Rows) ([]entity.WorkItem, error) {
	var items []entity.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work items: %w", err)
	}

	return items, nil
}

func scanWorkItem(row pgx.Row) (*entity.WorkItem, error) {
	var (
		id            pgtype.UUID
		jobID         pgtype.UUID
		parentID      pgtype.UUID
		kind          string
		title         string
		description   string
		priority      string
		complexity    string
		criteria      []string
		qualityScore  int
		qualityRating string
		position      int
		externalID    pgtype.Int4
		createdAt     pgtype.Timestamptz
	)

	err := row.Scan(&id, &jobID, &parentID, &kind, &title, &description, &priority,
		&complexity, &criteria, &qualityScore, &qualityRating, &position, &externalID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrWorkItemNotFound
		}
		return nil, err
	}

	item := &entity.WorkItem{
		ID:                 uuid.UUID(id.Bytes).String(),
		JobID:              uuid.UUID(jobID.Bytes).String(),
		Kind:               entity.WorkItemKind(kind),
		Title:              title,
		Description:        description,
		Priority:           priority,
		Complexity:         complexity,
		AcceptanceCriteria: criteria,
		QualityScore:       qualityScore,
		QualityRating:      qualityRating,
		Position:           position,
		CreatedAt:          createdAt.Time,
	}

	if parentID.Valid {
		parent := uuid.UUID(parentID.Bytes).String()
		item.ParentID = &parent
	}

	if externalID.Valid {
		ext := int(externalID.Int32)
		item.ExternalID = &ext
	}

	return item, nil
}
