package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ActorID     uuid.UUID       `json:"actor_id" db:"actor_id"`
	Action      string          `json:"action" db:"action"`
	EntityType  string          `json:"entity_type" db:"entity_type"`
	EntityID    uuid.UUID       `json:"entity_id" db:"entity_id"`
	Description string          `json:"description" db:"description"`
	Changes     json.RawMessage `json:"changes" db:"changes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

const (
	AuditActionCreate     = "create"
	AuditActionReschedule = "reschedule"
	AuditActionTransition = "transition"
	AuditActionRetire     = "retire"
	AuditActionClose      = "close"

	AuditEntityAppointment        = "appointment"
	AuditEntityAvailabilityWindow = "availability_window"
	AuditEntityEngagement         = "engagement"
)
