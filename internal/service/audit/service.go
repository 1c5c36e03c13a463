package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/repository"
)

// Service records one audit entry per successful mutating operation. It is
// best-effort: a failed write is logged and never propagated, so auditing can
// not roll back a committed scheduling transaction.
type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, description string, changes interface{}) {
	var payload json.RawMessage
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			log.Error().Err(err).Str("action", action).Msg("failed to marshal audit changes")
		} else {
			payload = data
		}
	}

	entry := &model.AuditLog{
		ID:          uuid.New(),
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Changes:     payload,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("failed to write audit log")
	}
}

func (s *Service) History(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, entityType, entityID)
}
