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

func (r *availabilityRepository) Create(ctx context.Context, window *model.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (
			id, instructor_id, weekday, start_time, end_time, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if window.ID == uuid.Nil {
		window.ID = uuid.New()
	}
	window.Active = true
	window.CreatedAt = time.Now()
	window.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		window.ID,
		window.InstructorID,
		int(window.Weekday),
		window.StartTime,
		window.EndTime,
		window.Active,
		window.CreatedAt,
		window.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityWindow, error) {
	query := `
		SELECT id, instructor_id, weekday, start_time, end_time, active,
		       created_at, updated_at, retired_at
		FROM availability_windows
		WHERE id = $1
	`
	var window model.AvailabilityWindow
	err := sqlx.GetContext(ctx, r.ext(ctx), &window, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("availability window not found")
		}
		return nil, fmt.Errorf("failed to get availability window: %w", err)
	}
	return &window, nil
}

func (r *availabilityRepository) ListActive(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, instructor_id, weekday, start_time, end_time, active,
		       created_at, updated_at, retired_at
		FROM availability_windows
		WHERE instructor_id = $1
		AND weekday = $2
		AND active = true
		ORDER BY start_time ASC
	`
	var windows []*model.AvailabilityWindow
	err := sqlx.SelectContext(ctx, r.ext(ctx), &windows, query, instructorID, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	return windows, nil
}

func (r *availabilityRepository) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, instructor_id, weekday, start_time, end_time, active,
		       created_at, updated_at, retired_at
		FROM availability_windows
		WHERE instructor_id = $1
		ORDER BY weekday ASC, start_time ASC
	`
	var windows []*model.AvailabilityWindow
	err := sqlx.SelectContext(ctx, r.ext(ctx), &windows, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	return windows, nil
}

func (r *availabilityRepository) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE availability_windows
		SET active = false, retired_at = $1, updated_at = $2
		WHERE id = $3 AND active = true
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to retire availability window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability window not found or already retired")
	}
	return nil
}
