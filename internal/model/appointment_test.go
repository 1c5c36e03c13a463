package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
		AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
	}
	all := []AppointmentStatus{
		AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusPending.Terminal())
	assert.False(t, AppointmentStatusConfirmed.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusNoShow.Terminal())
}

func TestAppointmentStatusBlocking(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Blocking())
	assert.True(t, AppointmentStatusConfirmed.Blocking())
	assert.True(t, AppointmentStatusCompleted.Blocking())
	assert.False(t, AppointmentStatusCancelled.Blocking())
	assert.False(t, AppointmentStatusNoShow.Blocking())
}

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Valid())
	assert.False(t, AppointmentStatus("rescheduled").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointmentInterval(t *testing.T) {
	appt := &Appointment{
		StartTime:       at(10, 0),
		DurationMinutes: 45,
	}
	interval := appt.Interval()
	assert.Equal(t, at(10, 0), interval.Start)
	assert.Equal(t, 45*time.Minute, interval.Duration)
	assert.Equal(t, at(10, 45), interval.End())
}
