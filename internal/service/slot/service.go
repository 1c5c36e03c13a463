package slot

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/repository"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

// AvailabilityReader is the slice of the availability registry the generator
// needs.
type AvailabilityReader interface {
	WindowsFor(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error)
}

// Query asks for the bookable start times on one date. PractitionerID is
// optional: when set, that practitioner's existing bookings are excluded.
type Query struct {
	EngagementID       uuid.UUID
	PractitionerID     uuid.UUID
	Date               time.Time
	GranularityMinutes int
}

type Slot struct {
	Start time.Time `json:"start"`
}

// Service generates bookable slots. The result is a deterministic snapshot:
// identical inputs against an unchanged booking set yield an identical
// sequence, so clients can poll idempotently.
type Service struct {
	engagements        repository.EngagementRepository
	appointments       repository.AppointmentRepository
	availability       AvailabilityReader
	defaultGranularity int
}

func NewService(engagements repository.EngagementRepository, appointments repository.AppointmentRepository, availability AvailabilityReader, defaultGranularityMinutes int) *Service {
	return &Service{
		engagements:        engagements,
		appointments:       appointments,
		availability:       availability,
		defaultGranularity: defaultGranularityMinutes,
	}
}

// Available enumerates candidate start times at the requested granularity
// inside each active window, drops candidates that would not fit fully inside
// their window, drops candidates overlapping an existing blocking booking, and
// returns the survivors ascending and deduplicated. No availability yields an
// empty sequence, not an error.
func (s *Service) Available(ctx context.Context, q Query) ([]Slot, error) {
	granularity := q.GranularityMinutes
	if granularity <= 0 {
		granularity = s.defaultGranularity
	}
	if granularity <= 0 {
		return nil, apperrors.BadRequest("granularity must be positive", nil)
	}

	engagement, err := s.engagements.Get(ctx, q.EngagementID)
	if err != nil {
		return nil, apperrors.NotFound("engagement", err)
	}
	if !engagement.ContainsDate(q.Date) {
		return []Slot{}, nil
	}

	windows, err := s.availability.WindowsFor(ctx, engagement.InstructorID, q.Date.Weekday())
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []Slot{}, nil
	}

	var busy []*model.Appointment
	if q.PractitionerID != uuid.Nil {
		dayStart := model.TimeOfDay(0).At(q.Date)
		busy, err = s.appointments.ListBlockingOn(ctx, q.PractitionerID, dayStart, dayStart.Add(24*time.Hour))
		if err != nil {
			return nil, err
		}
	}

	step := model.TimeOfDay(granularity)
	duration := time.Duration(granularity) * time.Minute
	seen := make(map[int64]struct{})
	slots := make([]Slot, 0)

	for _, w := range windows {
		// A slot must fit fully inside the window; partial tail slots are
		// excluded.
		for tod := w.StartTime; tod+step <= w.EndTime; tod += step {
			start := tod.At(q.Date)
			candidate := model.TimeInterval{Start: start, Duration: duration}

			occupied := false
			for _, appt := range busy {
				if candidate.Overlaps(appt.Interval()) {
					occupied = true
					break
				}
			}
			if occupied {
				continue
			}

			key := start.Unix()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			slots = append(slots, Slot{Start: start})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}
