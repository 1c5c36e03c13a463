package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/repository"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

// AvailabilityReader is the slice of the availability registry the conflict
// detector needs.
type AvailabilityReader interface {
	WindowsFor(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error)
}

// ConflictChecker decides whether a proposed appointment may occupy its
// interval. Checks run cheapest-first and short-circuit on the first failure,
// so every rejection carries exactly one conflict kind.
type ConflictChecker struct {
	engagements  repository.EngagementRepository
	appointments repository.AppointmentRepository
	availability AvailabilityReader
}

func NewConflictChecker(engagements repository.EngagementRepository, appointments repository.AppointmentRepository, availability AvailabilityReader) *ConflictChecker {
	return &ConflictChecker{
		engagements:  engagements,
		appointments: appointments,
		availability: availability,
	}
}

// Validate returns nil when the proposal is bookable, a *model.ConflictError
// for a business-rule rejection, or a plain error for storage failure.
// excludeID skips the appointment's own interval during a reschedule.
func (c *ConflictChecker) Validate(ctx context.Context, proposal *model.AppointmentProposal, excludeID *uuid.UUID) error {
	engagement, err := c.engagements.Get(ctx, proposal.EngagementID)
	if err != nil {
		return apperrors.NotFound("engagement", err)
	}
	if engagement.Status != model.EngagementStatusActive {
		return model.NewConflictError(model.ConflictEngagementNotActive,
			"engagement %s is %s", engagement.ID, engagement.Status)
	}

	interval := proposal.Interval()
	if !engagement.ContainsDate(interval.Start) {
		return model.NewConflictError(model.ConflictOutsideEngagementWindow,
			"%s is outside the engagement range %s to %s",
			interval.Start.Format("2006-01-02"),
			engagement.StartDate.Format("2006-01-02"),
			engagement.EndDate.Format("2006-01-02"))
	}

	windows, err := c.availability.WindowsFor(ctx, engagement.InstructorID, interval.Start.Weekday())
	if err != nil {
		return err
	}
	inWindow := false
	for _, w := range windows {
		if w.ContainsInterval(interval) {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return model.NewConflictError(model.ConflictOutsideInstructorAvailability,
			"instructor has no availability covering %s-%s on %s",
			interval.Start.Format("15:04"), interval.End().Format("15:04"),
			interval.Start.Weekday())
	}

	overlapping, err := c.appointments.FindOverlapping(ctx, proposal.PractitionerID, interval.Start, interval.End(), excludeID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return model.NewConflictError(model.ConflictPractitionerDoubleBooked,
			"practitioner already has an appointment from %s to %s",
			overlapping[0].StartTime.Format(time.RFC3339),
			overlapping[0].Interval().End().Format(time.RFC3339))
	}

	return nil
}
