package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/repository"
	"github.com/schedulo/practicum-api/internal/service/audit"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

// Config carries the scheduling business limits.
type Config struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	// TxTimeout bounds every mutating transaction. On expiry the operation
	// reports a timeout and the transaction rolls back; partial writes are
	// never observable.
	TxTimeout time.Duration
}

// Service is the appointment lifecycle manager: the only component that
// mutates appointment state. Every mutating operation validates and writes
// inside one transaction, holding a practitioner-scoped advisory lock so two
// concurrent bookings for the same practitioner serialize and exactly one
// wins.
type Service struct {
	repo     repository.AppointmentRepository
	txRunner repository.TxRunner
	checker  *ConflictChecker
	outbox   repository.OutboxRepository
	auditor  *audit.Service
	cfg      Config
}

func NewService(repo repository.AppointmentRepository, txRunner repository.TxRunner, checker *ConflictChecker, outbox repository.OutboxRepository, auditor *audit.Service, cfg Config) *Service {
	return &Service{
		repo:     repo,
		txRunner: txRunner,
		checker:  checker,
		outbox:   outbox,
		auditor:  auditor,
		cfg:      cfg,
	}
}

// Create books a new appointment in state pending. Conflict validation runs
// inside the same transaction as the insert, after taking the practitioner
// lock, which closes the race between check and insert: the losing writer of
// two concurrent creates re-validates against the committed row and observes
// a double-booking conflict.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, proposal *model.AppointmentProposal) (*model.Appointment, error) {
	if err := s.validateDuration(proposal.DurationMinutes); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		ID:              uuid.New(),
		EngagementID:    proposal.EngagementID,
		PractitionerID:  proposal.PractitionerID,
		PatientID:       proposal.PatientID,
		StartTime:       proposal.StartTime,
		DurationMinutes: proposal.DurationMinutes,
		Status:          model.AppointmentStatusPending,
		Reason:          proposal.Reason,
	}

	err := s.withTxTimeout(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockPractitioner(txCtx, proposal.PractitionerID); err != nil {
			return err
		}
		if err := s.checker.Validate(txCtx, proposal, nil); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, appointment); err != nil {
			return err
		}
		return s.enqueueEvent(txCtx, model.EventAppointmentCreated, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actorID, model.AuditActionCreate, model.AuditEntityAppointment, appointment.ID,
		"appointment booked", appointment)

	return appointment, nil
}

// Reschedule moves an appointment to a new interval. The full conflict check
// re-runs against the new interval, excluding the appointment's own current
// one. Terminal appointments cannot move.
func (s *Service) Reschedule(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *model.RescheduleRequest) (*model.Appointment, error) {
	if req.StartTime == nil && req.DurationMinutes == nil {
		return nil, apperrors.BadRequest("reschedule requires a new start time or duration", nil)
	}

	var updated *model.Appointment

	err := s.withTxTimeout(ctx, func(txCtx context.Context) error {
		appointment, err := s.repo.Get(txCtx, id)
		if err != nil {
			return apperrors.NotFound("appointment", err)
		}
		if appointment.Status.Terminal() {
			return model.ErrInvalidStateTransition
		}

		newStart := appointment.StartTime
		newDuration := appointment.DurationMinutes
		if req.StartTime != nil {
			newStart = *req.StartTime
		}
		if req.DurationMinutes != nil {
			newDuration = *req.DurationMinutes
		}
		if err := s.validateDuration(newDuration); err != nil {
			return err
		}

		proposal := &model.AppointmentProposal{
			EngagementID:    appointment.EngagementID,
			PractitionerID:  appointment.PractitionerID,
			PatientID:       appointment.PatientID,
			StartTime:       newStart,
			DurationMinutes: newDuration,
		}

		if err := s.repo.LockPractitioner(txCtx, appointment.PractitionerID); err != nil {
			return err
		}
		if err := s.checker.Validate(txCtx, proposal, &id); err != nil {
			return err
		}
		if err := s.repo.UpdateInterval(txCtx, id, newStart, newDuration); err != nil {
			return err
		}

		appointment.StartTime = newStart
		appointment.DurationMinutes = newDuration
		updated = appointment
		return s.enqueueEvent(txCtx, model.EventAppointmentRescheduled, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actorID, model.AuditActionReschedule, model.AuditEntityAppointment, id,
		fmt.Sprintf("appointment moved to %s", updated.StartTime.Format(time.RFC3339)), updated)

	return updated, nil
}

// Transition moves an appointment along the state machine. Completing
// requires non-empty outcome notes. The status update is a compare-and-swap,
// so a concurrent transition on the same row fails loudly instead of
// overwriting.
func (s *Service) Transition(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *model.TransitionRequest) (*model.Appointment, error) {
	if !req.TargetStatus.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown appointment status %q", req.TargetStatus), nil)
	}
	if req.TargetStatus == model.AppointmentStatusCompleted && strings.TrimSpace(req.OutcomeNotes) == "" {
		return nil, apperrors.BadRequest("outcome notes are required to complete an appointment", nil)
	}

	var updated *model.Appointment

	err := s.withTxTimeout(ctx, func(txCtx context.Context) error {
		appointment, err := s.repo.Get(txCtx, id)
		if err != nil {
			return apperrors.NotFound("appointment", err)
		}
		if !appointment.Status.CanTransitionTo(req.TargetStatus) {
			return model.ErrInvalidStateTransition
		}

		updated, err = s.repo.UpdateStatus(txCtx, id, appointment.Status, req.TargetStatus, req.OutcomeNotes)
		if err != nil {
			return err
		}
		return s.enqueueEvent(txCtx, model.EventAppointmentTransition, updated)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actorID, model.AuditActionTransition, model.AuditEntityAppointment, id,
		fmt.Sprintf("appointment %s", updated.Status), updated)

	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	return appointment, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) validateDuration(durationMinutes int) error {
	d := time.Duration(durationMinutes) * time.Minute
	if d < s.cfg.MinDuration || d > s.cfg.MaxDuration {
		return apperrors.BadRequest(
			fmt.Sprintf("appointment duration must be between %s and %s", s.cfg.MinDuration, s.cfg.MaxDuration), nil)
	}
	return nil
}

// withTxTimeout runs fn inside one transaction bounded by the configured
// timeout. A deadline expiry rolls the transaction back and surfaces as a
// retryable timeout.
func (s *Service) withTxTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	opCtx := ctx
	if s.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, s.cfg.TxTimeout)
		defer cancel()
	}

	err := s.txRunner.WithTx(opCtx, fn)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || opCtx.Err() == context.DeadlineExceeded) {
		return apperrors.NewTimeout("scheduling operation timed out", err)
	}
	return err
}

func (s *Service) enqueueEvent(ctx context.Context, eventType string, appointment *model.Appointment) error {
	payload, err := json.Marshal(appointment)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	})
}
