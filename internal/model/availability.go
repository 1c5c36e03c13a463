package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a recurring weekly interval during which an instructor
// supervises appointments. Windows are never hard-deleted: retiring a window
// flips Active off so appointments booked under it keep their history.
type AvailabilityWindow struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	InstructorID uuid.UUID    `db:"instructor_id" json:"instructor_id"`
	Weekday      time.Weekday `db:"weekday" json:"weekday"`
	StartTime    TimeOfDay    `db:"start_time" json:"start_time"`
	EndTime      TimeOfDay    `db:"end_time" json:"end_time"`
	Active       bool         `db:"active" json:"active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	RetiredAt    *time.Time   `db:"retired_at" json:"retired_at,omitempty"`
}

func (w *AvailabilityWindow) Validate() error {
	if w.InstructorID == uuid.Nil {
		return fmt.Errorf("instructor ID is required")
	}
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", w.Weekday)
	}
	if w.StartTime >= w.EndTime {
		return fmt.Errorf("window start %s must precede end %s", w.StartTime, w.EndTime)
	}
	return nil
}

// OverlapsWindow reports whether two windows on the same weekday intersect,
// half-open on time of day.
func (w *AvailabilityWindow) OverlapsWindow(other *AvailabilityWindow) bool {
	if w.Weekday != other.Weekday {
		return false
	}
	return w.StartTime < other.EndTime && other.StartTime < w.EndTime
}

// ContainsInstant reports whether the instant's weekday and clock time fall
// inside the window.
func (w *AvailabilityWindow) ContainsInstant(instant time.Time) bool {
	if instant.Weekday() != w.Weekday {
		return false
	}
	tod := TimeOfDay(instant.Hour()*60 + instant.Minute())
	return tod >= w.StartTime && tod < w.EndTime
}

// ContainsInterval reports whether the whole interval fits inside the window
// on the interval's weekday. Intervals are short enough that crossing midnight
// is rejected rather than split.
func (w *AvailabilityWindow) ContainsInterval(interval TimeInterval) bool {
	if interval.Start.Weekday() != w.Weekday {
		return false
	}
	start := TimeOfDay(interval.Start.Hour()*60 + interval.Start.Minute())
	end := start + TimeOfDay(interval.Duration.Minutes())
	return start >= w.StartTime && end <= w.EndTime
}

type CreateAvailabilityWindowRequest struct {
	InstructorID uuid.UUID `json:"instructor_id" validate:"required"`
	Weekday      string    `json:"weekday" validate:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	StartTime    string    `json:"start_time" validate:"required"`
	EndTime      string    `json:"end_time" validate:"required"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ParseWeekday(name string) (time.Weekday, error) {
	if d, ok := weekdayNames[name]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", name)
}
