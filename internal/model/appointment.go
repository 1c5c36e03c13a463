package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// appointmentTransitions is the full state machine. Completed, cancelled and
// no_show are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is a permitted edge from s.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, next := range appointmentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Blocking reports whether an appointment in this status occupies its
// practitioner's time for conflict purposes.
func (s AppointmentStatus) Blocking() bool {
	return s != AppointmentStatusCancelled && s != AppointmentStatusNoShow
}

// Appointment is the booking row. It is mutated only through the lifecycle
// service; cancellation is a status, never a delete.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	EngagementID    uuid.UUID         `db:"engagement_id" json:"engagement_id"`
	PractitionerID  uuid.UUID         `db:"practitioner_id" json:"practitioner_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartTime       time.Time         `db:"start_time" json:"start_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Reason          string            `db:"reason" json:"reason,omitempty"`
	OutcomeNotes    string            `db:"outcome_notes" json:"outcome_notes,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

func (a *Appointment) Interval() TimeInterval {
	return TimeInterval{Start: a.StartTime, Duration: time.Duration(a.DurationMinutes) * time.Minute}
}

// AppointmentProposal is the input to conflict validation and creation.
type AppointmentProposal struct {
	EngagementID    uuid.UUID `json:"engagement_id" validate:"required"`
	PractitionerID  uuid.UUID `json:"practitioner_id" validate:"required"`
	PatientID       uuid.UUID `json:"patient_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	Reason          string    `json:"reason" validate:"max=1000"`
}

func (p *AppointmentProposal) Interval() TimeInterval {
	return TimeInterval{Start: p.StartTime, Duration: time.Duration(p.DurationMinutes) * time.Minute}
}

// RescheduleRequest carries the new interval. Fields are independently
// optional; an omitted field keeps the current value.
type RescheduleRequest struct {
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=1"`
}

// TransitionRequest moves an appointment along the state machine.
type TransitionRequest struct {
	TargetStatus AppointmentStatus `json:"target_status" validate:"required"`
	OutcomeNotes string            `json:"outcome_notes" validate:"max=4000"`
}

type AppointmentFilters struct {
	EngagementID   uuid.UUID
	PractitionerID uuid.UUID
	Status         AppointmentStatus
	From           time.Time
	To             time.Time
}
