package engagement

import (
	"context"
	"errors"
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

type memEngagements struct {
	byID map[uuid.UUID]*model.Engagement
}

func newMemEngagements() *memEngagements {
	return &memEngagements{byID: make(map[uuid.UUID]*model.Engagement)}
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

func newFixture() (*Service, *memOutbox, *memAudit) {
	outbox := &memOutbox{}
	auditRepo := &memAudit{}
	svc := NewService(newMemEngagements(), passthroughTx{}, outbox, audit.NewService(auditRepo))
	return svc, outbox, auditRepo
}

func createRequest() *model.CreateEngagementRequest {
	return &model.CreateEngagementRequest{
		InstructorID: uuid.New(),
		Name:         "spring rotation",
		StartDate:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
		Capacity:     8,
	}
}

func TestCreateEngagement(t *testing.T) {
	svc, _, auditRepo := newFixture()

	created, err := svc.Create(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)
	assert.Equal(t, model.EngagementStatusActive, created.Status, "new engagements open active")

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "spring rotation", got.Name)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.AuditActionCreate, auditRepo.entries[0].Action)
}

func TestCreateEngagementRejectsInvalidRange(t *testing.T) {
	svc, _, _ := newFixture()

	req := createRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), uuid.New(), req)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCloseEngagement(t *testing.T) {
	svc, outbox, _ := newFixture()

	created, err := svc.Create(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), uuid.New(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EngagementStatusClosed, closed.Status)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventEngagementClosed, outbox.events[0].EventType)
}

func TestCloseIsNotIdempotent(t *testing.T) {
	svc, _, _ := newFixture()

	created, err := svc.Create(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), uuid.New(), created.ID)
	require.NoError(t, err)

	// A second close finds no active row to move.
	_, err = svc.Close(context.Background(), uuid.New(), created.ID)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrUnprocessable, appErr.Code)
}

func TestCloseUnknownEngagement(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Close(context.Background(), uuid.New(), uuid.New())
	assert.Error(t, err)
}
