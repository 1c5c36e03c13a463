package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/schedulo/practicum-api/internal/repository"
)

type availabilityRepository struct {
	BaseRepository
}

type engagementRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type auditRepository struct {
	BaseRepository
}

type outboxRepository struct {
	BaseRepository
}

// NewTxRunner exposes the shared transaction machinery so services can span
// multiple repositories in one transaction.
func NewTxRunner(db *sqlx.DB) repository.TxRunner {
	base := NewBaseRepository(db)
	return &base
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{NewBaseRepository(db)}
}

func NewEngagementRepository(db *sqlx.DB) repository.EngagementRepository {
	return &engagementRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{NewBaseRepository(db)}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}
