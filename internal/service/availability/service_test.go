package availability

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/service/audit"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

var errNoRows = errors.New("no rows")

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memWindows struct {
	byID        map[uuid.UUID]*model.AvailabilityWindow
	listCalls   int
	retireCalls int
}

func newMemWindows() *memWindows {
	return &memWindows{byID: make(map[uuid.UUID]*model.AvailabilityWindow)}
}

func (m *memWindows) Create(ctx context.Context, w *model.AvailabilityWindow) error {
	m.byID[w.ID] = w
	return nil
}

func (m *memWindows) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityWindow, error) {
	w, ok := m.byID[id]
	if !ok {
		return nil, errNoRows
	}
	return w, nil
}

func (m *memWindows) ListActive(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	m.listCalls++
	var out []*model.AvailabilityWindow
	for _, w := range m.byID {
		if w.Active && w.InstructorID == instructorID && w.Weekday == weekday {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memWindows) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, w := range m.byID {
		if w.InstructorID == instructorID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memWindows) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.retireCalls++
	w, ok := m.byID[id]
	if !ok {
		return errNoRows
	}
	w.Active = false
	w.RetiredAt = &at
	return nil
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

func newFixture() (*Service, *memWindows, *memOutbox) {
	repo := newMemWindows()
	outbox := &memOutbox{}
	svc := NewService(repo, passthroughTx{}, outbox, audit.NewService(&memAudit{}), time.Minute)
	return svc, repo, outbox
}

func windowRequest(instructorID uuid.UUID, weekday, start, end string) *model.CreateAvailabilityWindowRequest {
	return &model.CreateAvailabilityWindowRequest{
		InstructorID: instructorID,
		Weekday:      weekday,
		StartTime:    start,
		EndTime:      end,
	}
}

func TestAddWindow(t *testing.T) {
	svc, repo, outbox := newFixture()
	instructorID := uuid.New()

	window, err := svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "09:00", "11:00"))
	require.NoError(t, err)

	assert.Equal(t, time.Monday, window.Weekday)
	assert.Equal(t, model.TimeOfDay(9*60), window.StartTime)
	assert.Equal(t, model.TimeOfDay(11*60), window.EndTime)
	assert.True(t, window.Active)

	_, err = repo.Get(context.Background(), window.ID)
	assert.NoError(t, err)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventWindowAdded, outbox.events[0].EventType)
}

func TestAddWindowRejectsBadInput(t *testing.T) {
	svc, _, _ := newFixture()
	instructorID := uuid.New()

	cases := []*model.CreateAvailabilityWindowRequest{
		windowRequest(instructorID, "funday", "09:00", "11:00"),
		windowRequest(instructorID, "monday", "25:00", "11:00"),
		windowRequest(instructorID, "monday", "09:00", "09:00"),
		windowRequest(instructorID, "monday", "11:00", "09:00"),
	}
	for _, req := range cases {
		_, err := svc.AddWindow(context.Background(), uuid.New(), req)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr), "request %+v should be rejected", req)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	}
}

func TestAddWindowRejectsOverlap(t *testing.T) {
	svc, _, _ := newFixture()
	instructorID := uuid.New()

	_, err := svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "09:00", "11:00"))
	require.NoError(t, err)

	_, err = svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "10:00", "12:00"))
	assert.ErrorIs(t, err, model.ErrWindowOverlap)

	// Adjacent is allowed, as is the same clock range on another weekday or
	// for another instructor.
	_, err = svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "11:00", "13:00"))
	assert.NoError(t, err)

	_, err = svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "tuesday", "09:00", "11:00"))
	assert.NoError(t, err)

	_, err = svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(uuid.New(), "monday", "09:00", "11:00"))
	assert.NoError(t, err)
}

func TestRetireWindow(t *testing.T) {
	svc, repo, outbox := newFixture()
	instructorID := uuid.New()

	window, err := svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "09:00", "11:00"))
	require.NoError(t, err)

	require.NoError(t, svc.Retire(context.Background(), uuid.New(), window.ID))

	stored, err := repo.Get(context.Background(), window.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.NotNil(t, stored.RetiredAt)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventWindowRetired, outbox.events[1].EventType)

	// The clock range is free again.
	_, err = svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "09:00", "11:00"))
	assert.NoError(t, err)
}

func TestRetireUnknownWindow(t *testing.T) {
	svc, _, _ := newFixture()

	err := svc.Retire(context.Background(), uuid.New(), uuid.New())
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestWindowsForCachesAndInvalidates(t *testing.T) {
	svc, repo, _ := newFixture()
	instructorID := uuid.New()

	window, err := svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "09:00", "11:00"))
	require.NoError(t, err)

	repo.listCalls = 0
	_, err = svc.WindowsFor(context.Background(), instructorID, time.Monday)
	require.NoError(t, err)
	_, err = svc.WindowsFor(context.Background(), instructorID, time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second lookup is served from cache")

	// Retiring invalidates the cached entry.
	require.NoError(t, svc.Retire(context.Background(), uuid.New(), window.ID))
	windows, err := svc.WindowsFor(context.Background(), instructorID, time.Monday)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestWindowsForSortedByStartTime(t *testing.T) {
	svc, _, _ := newFixture()
	instructorID := uuid.New()

	for _, r := range [][2]string{{"14:00", "16:00"}, {"08:00", "10:00"}, {"11:00", "12:00"}} {
		_, err := svc.AddWindow(context.Background(), uuid.New(),
			windowRequest(instructorID, "monday", r[0], r[1]))
		require.NoError(t, err)
	}

	windows, err := svc.WindowsFor(context.Background(), instructorID, time.Monday)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.True(t, sort.SliceIsSorted(windows, func(i, j int) bool {
		return windows[i].StartTime < windows[j].StartTime
	}))
}

func TestIsWithinAvailability(t *testing.T) {
	svc, _, _ := newFixture()
	instructorID := uuid.New()

	_, err := svc.AddWindow(context.Background(), uuid.New(),
		windowRequest(instructorID, "monday", "09:00", "11:00"))
	require.NoError(t, err)

	// 2026-03-02 is a Monday.
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	in, err := svc.IsWithinAvailability(context.Background(), instructorID, monday.Add(10*time.Hour))
	require.NoError(t, err)
	assert.True(t, in)

	in, err = svc.IsWithinAvailability(context.Background(), instructorID, monday.Add(12*time.Hour))
	require.NoError(t, err)
	assert.False(t, in)
}
