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

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, engagement_id, practitioner_id, patient_id,
			start_time, duration_minutes, status, reason, outcome_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.EngagementID,
		appointment.PractitionerID,
		appointment.PatientID,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.Status,
		appointment.Reason,
		appointment.OutcomeNotes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, engagement_id, practitioner_id, patient_id,
		       start_time, duration_minutes, status, reason, outcome_notes,
		       created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := sqlx.GetContext(ctx, r.ext(ctx), &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appointment not found")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateInterval(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) error {
	query := `
		UPDATE appointments
		SET start_time = $1, duration_minutes = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, start, durationMinutes, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment interval: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

// UpdateStatus moves the row from -> to in a single statement. The status
// predicate makes it a compare-and-swap: a concurrent transition loses and is
// reported as an invalid transition rather than silently overwritten.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus, outcomeNotes string) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1,
		    outcome_notes = CASE WHEN $2 <> '' THEN $2 ELSE outcome_notes END,
		    updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING id, engagement_id, practitioner_id, patient_id,
		          start_time, duration_minutes, status, reason, outcome_notes,
		          created_at, updated_at
	`
	var appointment model.Appointment
	err := sqlx.GetContext(ctx, r.ext(ctx), &appointment, query, to, outcomeNotes, time.Now(), id, from)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrInvalidStateTransition
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, engagement_id, practitioner_id, patient_id,
		       start_time, duration_minutes, status, reason, outcome_notes,
		       created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.EngagementID != uuid.Nil {
			query += fmt.Sprintf(" AND engagement_id = $%d", argCount)
			args = append(args, filters.EngagementID)
			argCount++
		}
		if filters.PractitionerID != uuid.Nil {
			query += fmt.Sprintf(" AND practitioner_id = $%d", argCount)
			args = append(args, filters.PractitionerID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.From.IsZero() {
			query += fmt.Sprintf(" AND start_time >= $%d", argCount)
			args = append(args, filters.From)
			argCount++
		}
		if !filters.To.IsZero() {
			query += fmt.Sprintf(" AND start_time < $%d", argCount)
			args = append(args, filters.To)
			argCount++
		}
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := sqlx.SelectContext(ctx, r.ext(ctx), &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// FindOverlapping uses the shared half-open predicate: rows where
// start_time < $end AND start_time + duration > $start. Touching endpoints do
// not conflict.
func (r *appointmentRepository) FindOverlapping(ctx context.Context, practitionerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, engagement_id, practitioner_id, patient_id,
		       start_time, duration_minutes, status, reason, outcome_notes,
		       created_at, updated_at
		FROM appointments
		WHERE practitioner_id = $1
		AND status NOT IN ('cancelled', 'no_show')
		AND start_time < $2
		AND start_time + duration_minutes * interval '1 minute' > $3
	`
	args := []interface{}{practitionerID, end, start}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := sqlx.SelectContext(ctx, r.ext(ctx), &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBlockingOn(ctx context.Context, practitionerID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, engagement_id, practitioner_id, patient_id,
		       start_time, duration_minutes, status, reason, outcome_notes,
		       created_at, updated_at
		FROM appointments
		WHERE practitioner_id = $1
		AND status NOT IN ('cancelled', 'no_show')
		AND start_time >= $2
		AND start_time < $3
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := sqlx.SelectContext(ctx, r.ext(ctx), &appointments, query, practitionerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// LockPractitioner serializes writers for one practitioner. The lock is
// transaction-scoped and released automatically at commit or rollback.
func (r *appointmentRepository) LockPractitioner(ctx context.Context, practitionerID uuid.UUID) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); !ok {
		return fmt.Errorf("LockPractitioner requires an active transaction")
	}
	_, err := r.ext(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, practitionerID.String())
	if err != nil {
		return fmt.Errorf("failed to lock practitioner: %w", err)
	}
	return nil
}
