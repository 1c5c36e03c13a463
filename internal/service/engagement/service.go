package engagement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/repository"
	"github.com/schedulo/practicum-api/internal/service/audit"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

type Service struct {
	repo     repository.EngagementRepository
	txRunner repository.TxRunner
	outbox   repository.OutboxRepository
	auditor  *audit.Service
}

func NewService(repo repository.EngagementRepository, txRunner repository.TxRunner, outbox repository.OutboxRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:     repo,
		txRunner: txRunner,
		outbox:   outbox,
		auditor:  auditor,
	}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateEngagementRequest) (*model.Engagement, error) {
	engagement := &model.Engagement{
		ID:           uuid.New(),
		InstructorID: req.InstructorID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Capacity:     req.Capacity,
		Status:       model.EngagementStatusActive,
	}
	if err := engagement.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	if err := s.repo.Create(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	s.auditor.Record(ctx, actorID, model.AuditActionCreate, model.AuditEntityEngagement, engagement.ID,
		fmt.Sprintf("engagement %q opened", engagement.Name), engagement)

	return engagement, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Engagement, error) {
	engagement, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("engagement", err)
	}
	return engagement, nil
}

func (s *Service) List(ctx context.Context, filters *model.EngagementFilters) ([]*model.Engagement, error) {
	return s.repo.List(ctx, filters)
}

// Close ends an engagement. New appointments under it are rejected from this
// point on; existing appointments keep their lifecycle.
func (s *Service) Close(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*model.Engagement, error) {
	err := s.txRunner.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateStatus(txCtx, id, model.EngagementStatusActive, model.EngagementStatusClosed); err != nil {
			return apperrors.NewUnprocessable("engagement is not active", err)
		}
		payload, err := json.Marshal(map[string]string{"engagement_id": id.String()})
		if err != nil {
			return err
		}
		return s.outbox.Create(txCtx, &model.OutboxEvent{
			EventType: model.EventEngagementClosed,
			Payload:   payload,
		})
	})
	if err != nil {
		return nil, err
	}

	engagement, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("engagement", err)
	}

	s.auditor.Record(ctx, actorID, model.AuditActionClose, model.AuditEntityEngagement, id,
		"engagement closed", nil)

	return engagement, nil
}
