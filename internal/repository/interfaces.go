package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/model"
)

// TxRunner scopes a function to one storage transaction. The transaction
// handle travels in the context, so repository calls made inside fn share it;
// nested WithTx calls join the outer transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// All repository interfaces in one file
type (
	AvailabilityRepository interface {
		Create(ctx context.Context, window *model.AvailabilityWindow) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityWindow, error)
		// ListActive returns active windows for the instructor and weekday,
		// chronological by start time.
		ListActive(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error)
		ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.AvailabilityWindow, error)
		Retire(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	EngagementRepository interface {
		Create(ctx context.Context, engagement *model.Engagement) error
		Get(ctx context.Context, id uuid.UUID) (*model.Engagement, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.EngagementStatus) error
		List(ctx context.Context, filters *model.EngagementFilters) ([]*model.Engagement, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateInterval(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) error
		// UpdateStatus is a compare-and-swap: the row moves from -> to in one
		// statement, or the call reports model.ErrInvalidStateTransition.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus, outcomeNotes string) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// FindOverlapping returns blocking appointments for the practitioner
		// whose half-open interval intersects [start, end). excludeID skips the
		// appointment being rescheduled.
		FindOverlapping(ctx context.Context, practitionerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
		// ListBlockingOn returns non-cancelled, non-no-show appointments for
		// the practitioner within [dayStart, dayEnd), chronological.
		ListBlockingOn(ctx context.Context, practitionerID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error)
		// LockPractitioner takes a transaction-scoped advisory lock that
		// serializes concurrent writers for one practitioner. Must be called
		// inside WithTx.
		LockPractitioner(ctx context.Context, practitionerID uuid.UUID) error
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
