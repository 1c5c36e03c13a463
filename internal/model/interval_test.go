package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 0, 0, time.UTC)
}

func TestNewTimeInterval(t *testing.T) {
	_, err := NewTimeInterval(at(9, 0), 30*time.Minute)
	assert.NoError(t, err)

	_, err = NewTimeInterval(at(9, 0), 0)
	assert.Error(t, err)

	_, err = NewTimeInterval(at(9, 0), -time.Minute)
	assert.Error(t, err)
}

func TestTimeIntervalOverlaps(t *testing.T) {
	a := TimeInterval{Start: at(9, 0), Duration: time.Hour}

	// Partial overlap on either side.
	assert.True(t, a.Overlaps(TimeInterval{Start: at(9, 30), Duration: time.Hour}))
	assert.True(t, a.Overlaps(TimeInterval{Start: at(8, 30), Duration: time.Hour}))

	// Containment both ways.
	assert.True(t, a.Overlaps(TimeInterval{Start: at(9, 15), Duration: 15 * time.Minute}))
	assert.True(t, a.Overlaps(TimeInterval{Start: at(8, 0), Duration: 4 * time.Hour}))

	// Touching endpoints do not overlap: [9,10) and [10,11).
	assert.False(t, a.Overlaps(TimeInterval{Start: at(10, 0), Duration: time.Hour}))
	assert.False(t, a.Overlaps(TimeInterval{Start: at(8, 0), Duration: time.Hour}))

	// Disjoint.
	assert.False(t, a.Overlaps(TimeInterval{Start: at(12, 0), Duration: time.Hour}))
}

func TestTimeIntervalContains(t *testing.T) {
	i := TimeInterval{Start: at(9, 0), Duration: time.Hour}

	assert.True(t, i.Contains(at(9, 0)), "start is included")
	assert.True(t, i.Contains(at(9, 59)))
	assert.False(t, i.Contains(at(10, 0)), "end is excluded")
	assert.False(t, i.Contains(at(8, 59)))
}

func TestTimeIntervalWithin(t *testing.T) {
	i := TimeInterval{Start: at(9, 0), Duration: time.Hour}

	assert.True(t, i.Within(at(9, 0), at(10, 0)), "exact fit")
	assert.True(t, i.Within(at(8, 0), at(12, 0)))
	assert.False(t, i.Within(at(9, 30), at(12, 0)))
	assert.False(t, i.Within(at(8, 0), at(9, 30)))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), tod)
	assert.Equal(t, "09:30", tod.String())

	tod, err = ParseTimeOfDay("00:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(0), tod)

	tod, err = ParseTimeOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(23*60+59), tod)

	for _, bad := range []string{"24:00", "12:60", "-1:00", "abc", ""} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2026, time.March, 2, 17, 45, 12, 0, time.UTC)
	anchored := TimeOfDay(9*60 + 30).At(date)

	assert.Equal(t, time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC), anchored)
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := TimeOfDay(14 * 60).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"14:00"`, string(data))

	var tod TimeOfDay
	require.NoError(t, tod.UnmarshalJSON([]byte(`"08:15"`)))
	assert.Equal(t, TimeOfDay(8*60+15), tod)

	assert.Error(t, tod.UnmarshalJSON([]byte(`"25:00"`)))
}
