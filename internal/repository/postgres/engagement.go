package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schedulo/practicum-api/internal/model"
)

func (r *engagementRepository) Create(ctx context.Context, engagement *model.Engagement) error {
	query := `
		INSERT INTO engagements (
			id, instructor_id, name, start_date, end_date, capacity, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if engagement.ID == uuid.Nil {
		engagement.ID = uuid.New()
	}
	engagement.CreatedAt = time.Now()
	engagement.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		engagement.ID,
		engagement.InstructorID,
		engagement.Name,
		engagement.StartDate,
		engagement.EndDate,
		engagement.Capacity,
		engagement.Status,
		engagement.CreatedAt,
		engagement.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}
	return nil
}

func (r *engagementRepository) Get(ctx context.Context, id uuid.UUID) (*model.Engagement, error) {
	query := `
		SELECT id, instructor_id, name, start_date, end_date, capacity, status,
		       created_at, updated_at
		FROM engagements
		WHERE id = $1
	`
	var engagement model.Engagement
	err := sqlx.GetContext(ctx, r.ext(ctx), &engagement, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("engagement not found")
		}
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	return &engagement, nil
}

func (r *engagementRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.EngagementStatus) error {
	query := `
		UPDATE engagements
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("failed to update engagement status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("engagement not found or not %s", from)
	}
	return nil
}

func (r *engagementRepository) List(ctx context.Context, filters *model.EngagementFilters) ([]*model.Engagement, error) {
	query := `
		SELECT id, instructor_id, name, start_date, end_date, capacity, status,
		       created_at, updated_at
		FROM engagements
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.InstructorID != uuid.Nil {
			query += fmt.Sprintf(" AND instructor_id = $%d", argCount)
			args = append(args, filters.InstructorID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY start_date ASC"

	var engagements []*model.Engagement
	err := sqlx.SelectContext(ctx, r.ext(ctx), &engagements, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	return engagements, nil
}
