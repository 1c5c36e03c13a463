package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeInterval is a half-open interval [Start, End). Touching endpoints do
// not overlap, so a booking ending at 10:00 never conflicts with one starting
// at 10:00.
type TimeInterval struct {
	Start    time.Time
	Duration time.Duration
}

// NewTimeInterval builds an interval. A non-positive duration is a caller bug,
// not a runtime condition, so it is rejected at construction.
func NewTimeInterval(start time.Time, duration time.Duration) (TimeInterval, error) {
	if duration <= 0 {
		return TimeInterval{}, fmt.Errorf("interval duration must be positive, got %s", duration)
	}
	return TimeInterval{Start: start, Duration: duration}, nil
}

func (i TimeInterval) End() time.Time {
	return i.Start.Add(i.Duration)
}

// Overlaps reports whether two intervals intersect: a.start < b.end AND b.start < a.end.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End()) && other.Start.Before(i.End())
}

// Contains reports whether the instant falls inside the interval.
func (i TimeInterval) Contains(instant time.Time) bool {
	return !instant.Before(i.Start) && instant.Before(i.End())
}

// Within reports whether the interval lies entirely inside [rangeStart, rangeEnd).
func (i TimeInterval) Within(rangeStart, rangeEnd time.Time) bool {
	return !i.Start.Before(rangeStart) && !i.End().After(rangeEnd)
}

// TimeOfDay is a clock time expressed as minutes since midnight. It is stored
// as an integer column and rendered as "HH:MM".
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At anchors the clock time on the given date, in that date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, date.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*t = TimeOfDay(v)
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}
