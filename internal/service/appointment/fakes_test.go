package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/model"
)

var errNoRows = errors.New("no rows")

// passthroughTx runs the function directly; the in-memory fakes below are
// already atomic enough for single-goroutine tests.
type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memEngagements struct {
	byID map[uuid.UUID]*model.Engagement
}

func newMemEngagements(engagements ...*model.Engagement) *memEngagements {
	m := &memEngagements{byID: make(map[uuid.UUID]*model.Engagement)}
	for _, e := range engagements {
		m.byID[e.ID] = e
	}
	return m
}

func (m *memEngagements) Create(ctx context.Context, e *model.Engagement) error {
	m.byID[e.ID] = e
	return nil
}

func (m *memEngagements) Get(ctx context.Context, id uuid.UUID) (*model.Engagement, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, errNoRows
	}
	return e, nil
}

func (m *memEngagements) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.EngagementStatus) error {
	e, ok := m.byID[id]
	if !ok || e.Status != from {
		return errNoRows
	}
	e.Status = to
	return nil
}

func (m *memEngagements) List(ctx context.Context, filters *model.EngagementFilters) ([]*model.Engagement, error) {
	var out []*model.Engagement
	for _, e := range m.byID {
		out = append(out, e)
	}
	return out, nil
}

type memAppointments struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Appointment
}

func newMemAppointments(appointments ...*model.Appointment) *memAppointments {
	m := &memAppointments{byID: make(map[uuid.UUID]*model.Appointment)}
	for _, a := range appointments {
		m.byID[a.ID] = a
	}
	return m
}

func (m *memAppointments) Create(ctx context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = a
	return nil
}

func (m *memAppointments) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, errNoRows
	}
	copied := *a
	return &copied, nil
}

func (m *memAppointments) UpdateInterval(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return errNoRows
	}
	a.StartTime = start
	a.DurationMinutes = durationMinutes
	return nil
}

func (m *memAppointments) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus, outcomeNotes string) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.Status != from {
		return nil, model.ErrInvalidStateTransition
	}
	a.Status = to
	if outcomeNotes != "" {
		a.OutcomeNotes = outcomeNotes
	}
	copied := *a
	return &copied, nil
}

func (m *memAppointments) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Appointment
	for _, a := range m.byID {
		out = append(out, a)
	}
	return out, nil
}

func (m *memAppointments) FindOverlapping(ctx context.Context, practitionerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	probe := model.TimeInterval{Start: start, Duration: end.Sub(start)}
	var out []*model.Appointment
	for _, a := range m.byID {
		if a.PractitionerID != practitionerID || !a.Status.Blocking() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if probe.Overlaps(a.Interval()) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointments) ListBlockingOn(ctx context.Context, practitionerID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	return m.FindOverlapping(ctx, practitionerID, dayStart, dayEnd, nil)
}

func (m *memAppointments) LockPractitioner(ctx context.Context, practitionerID uuid.UUID) error {
	return nil
}

type stubAvailability struct {
	windows []*model.AvailabilityWindow
}

func (s *stubAvailability) WindowsFor(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, w := range s.windows {
		if w.Weekday == weekday {
			out = append(out, w)
		}
	}
	return out, nil
}

type memOutbox struct {
	events []*model.OutboxEvent
}

func (m *memOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memOutbox) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return m.events, nil
}

func (m *memOutbox) MarkProcessed(ctx context.Context, id uuid.UUID) error { return nil }

func (m *memOutbox) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return nil
}

func (m *memOutbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type memAudit struct {
	entries []*model.AuditLog
}

func (m *memAudit) Create(ctx context.Context, log *model.AuditLog) error {
	m.entries = append(m.entries, log)
	return nil
}

func (m *memAudit) List(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error) {
	return m.entries, nil
}
