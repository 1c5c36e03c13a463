package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EngagementStatus string

const (
	EngagementStatusActive EngagementStatus = "active"
	EngagementStatusClosed EngagementStatus = "closed"
)

// Engagement is a bounded practice rotation under one instructor. It defines
// the valid date range for appointments scheduled under it.
type Engagement struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	InstructorID uuid.UUID        `db:"instructor_id" json:"instructor_id"`
	Name         string           `db:"name" json:"name"`
	StartDate    time.Time        `db:"start_date" json:"start_date"`
	EndDate      time.Time        `db:"end_date" json:"end_date"`
	Capacity     int              `db:"capacity" json:"capacity"`
	Status       EngagementStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

func (e *Engagement) Validate() error {
	if e.InstructorID == uuid.Nil {
		return fmt.Errorf("instructor ID is required")
	}
	if e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("engagement end date %s precedes start date %s",
			e.EndDate.Format("2006-01-02"), e.StartDate.Format("2006-01-02"))
	}
	if e.Capacity <= 0 {
		return fmt.Errorf("engagement capacity must be positive")
	}
	return nil
}

// ContainsDate reports whether the calendar date of t falls within
// [StartDate, EndDate], inclusive on both ends.
func (e *Engagement) ContainsDate(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(truncateToDay(e.StartDate)) && !day.After(truncateToDay(e.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type CreateEngagementRequest struct {
	InstructorID uuid.UUID `json:"instructor_id" validate:"required"`
	Name         string    `json:"name" validate:"required,max=200"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Capacity     int       `json:"capacity" validate:"required,min=1"`
}

type EngagementFilters struct {
	InstructorID uuid.UUID
	Status       EngagementStatus
}
