package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/repository"
	"github.com/schedulo/practicum-api/internal/service/audit"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

// Service is the availability registry: recurring weekly windows per
// instructor. Window lookups are read-heavy and cached; mutations go through
// one transaction with an overlap re-check inside it.
type Service struct {
	repo     repository.AvailabilityRepository
	txRunner repository.TxRunner
	outbox   repository.OutboxRepository
	auditor  *audit.Service
	cache    *gocache.Cache
}

func NewService(repo repository.AvailabilityRepository, txRunner repository.TxRunner, outbox repository.OutboxRepository, auditor *audit.Service, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		txRunner: txRunner,
		outbox:   outbox,
		auditor:  auditor,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func cacheKey(instructorID uuid.UUID, weekday time.Weekday) string {
	return fmt.Sprintf("%s:%d", instructorID, weekday)
}

// AddWindow creates a new active window. Overlapping an existing active window
// for the same instructor and weekday is rejected rather than merged, so the
// audit trail stays unambiguous. The overlap check and the insert share one
// transaction.
func (s *Service) AddWindow(ctx context.Context, actorID uuid.UUID, req *model.CreateAvailabilityWindowRequest) (*model.AvailabilityWindow, error) {
	weekday, err := model.ParseWeekday(req.Weekday)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	end, err := model.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	window := &model.AvailabilityWindow{
		ID:           uuid.New(),
		InstructorID: req.InstructorID,
		Weekday:      weekday,
		StartTime:    start,
		EndTime:      end,
		Active:       true,
	}
	if err := window.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	err = s.txRunner.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListActive(txCtx, window.InstructorID, window.Weekday)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if window.OverlapsWindow(other) {
				return model.ErrWindowOverlap
			}
		}
		if err := s.repo.Create(txCtx, window); err != nil {
			return err
		}
		return s.enqueueEvent(txCtx, model.EventWindowAdded, window)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(cacheKey(window.InstructorID, window.Weekday))
	s.auditor.Record(ctx, actorID, model.AuditActionCreate, model.AuditEntityAvailabilityWindow, window.ID,
		fmt.Sprintf("availability window %s %s-%s", req.Weekday, window.StartTime, window.EndTime), window)

	return window, nil
}

// Retire soft-deletes a window. Appointments already booked under it stay
// valid; only future slot generation and conflict checks stop seeing it.
func (s *Service) Retire(ctx context.Context, actorID uuid.UUID, windowID uuid.UUID) error {
	var retired *model.AvailabilityWindow

	err := s.txRunner.WithTx(ctx, func(txCtx context.Context) error {
		window, err := s.repo.Get(txCtx, windowID)
		if err != nil {
			return apperrors.NotFound("availability window", err)
		}
		if err := s.repo.Retire(txCtx, windowID, time.Now()); err != nil {
			return err
		}
		retired = window
		return s.enqueueEvent(txCtx, model.EventWindowRetired, window)
	})
	if err != nil {
		return err
	}

	s.cache.Delete(cacheKey(retired.InstructorID, retired.Weekday))
	s.auditor.Record(ctx, actorID, model.AuditActionRetire, model.AuditEntityAvailabilityWindow, windowID,
		"availability window retired", nil)

	return nil
}

// WindowsFor returns the active windows for an instructor on a weekday,
// chronological by start time. Results are cached briefly; window mutations
// invalidate the owner's entry.
func (s *Service) WindowsFor(ctx context.Context, instructorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	key := cacheKey(instructorID, weekday)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.AvailabilityWindow), nil
	}

	windows, err := s.repo.ListActive(ctx, instructorID, weekday)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, windows, gocache.DefaultExpiration)
	return windows, nil
}

// IsWithinAvailability reports whether some active window for the instructor
// contains the instant.
func (s *Service) IsWithinAvailability(ctx context.Context, instructorID uuid.UUID, instant time.Time) (bool, error) {
	windows, err := s.WindowsFor(ctx, instructorID, instant.Weekday())
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if w.ContainsInstant(instant) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	return s.repo.ListForInstructor(ctx, instructorID)
}

func (s *Service) enqueueEvent(ctx context.Context, eventType string, window *model.AvailabilityWindow) error {
	payload, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	})
}
