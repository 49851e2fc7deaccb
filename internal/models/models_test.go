package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	expected := NewDate(2025, time.June, 10)

	for _, raw := range []string{
		"2025/06/10",
		"2025-06-10",
		"2025-06-10T09:30:00+09:00",
	} {
		parsed, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, parsed, raw)
	}

	_, err := ParseDate("10/06/2025")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateRendering(t *testing.T) {
	d := NewDate(2025, time.June, 3)
	assert.Equal(t, "2025/06/03", d.String())
	assert.Equal(t, "2025-06-03", d.ISO())
	assert.Equal(t, time.Tuesday, d.Weekday())
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.June, 10)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	// Canonical slash form on the wire.
	assert.Equal(t, `"2025/06/10"`, string(raw))

	var decoded Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-10"`), &decoded))
	assert.Equal(t, d, decoded)
}

func TestParseTimeOfDay(t *testing.T) {
	expected := NewTimeOfDay(9, 30)

	for _, raw := range []string{
		"09:30",
		"09:30:45",
		"2025-06-10T09:30:00+09:00",
	} {
		parsed, err := ParseTimeOfDay(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, parsed, raw)
	}

	_, err := ParseTimeOfDay("9.30")
	assert.Error(t, err)
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "08:05", NewTimeOfDay(8, 5).String())
	assert.Equal(t, "00:00", NewTimeOfDay(0, 0).String())
	assert.Equal(t, "23:59", NewTimeOfDay(23, 59).String())
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(11, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"AbuttingBefore", Interval{NewTimeOfDay(8, 0), NewTimeOfDay(9, 0)}, false},
		{"AbuttingAfter", Interval{NewTimeOfDay(11, 0), NewTimeOfDay(12, 0)}, false},
		{"Contained", Interval{NewTimeOfDay(9, 30), NewTimeOfDay(10, 30)}, true},
		{"Containing", Interval{NewTimeOfDay(8, 0), NewTimeOfDay(12, 0)}, true},
		{"OverlapStart", Interval{NewTimeOfDay(8, 0), NewTimeOfDay(9, 1)}, true},
		{"OverlapEnd", Interval{NewTimeOfDay(10, 59), NewTimeOfDay(12, 0)}, true},
		{"Disjoint", Interval{NewTimeOfDay(12, 0), NewTimeOfDay(13, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			// Symmetric by construction.
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestSobrietyCheckFlagged(t *testing.T) {
	assert.False(t, SobrietyCheck{Presence: AlcoholAbsent}.Flagged())
	assert.True(t, SobrietyCheck{Presence: AlcoholPresent}.Flagged())
	assert.True(t, SobrietyCheck{Presence: AlcoholAbsent, AlcoholLevel: 0.01}.Flagged())
}

func TestReservationActive(t *testing.T) {
	assert.True(t, Reservation{Status: StatusReserved}.Active())
	assert.True(t, Reservation{Status: StatusInUse}.Active())
	assert.True(t, Reservation{Status: StatusCompleted}.Active())
	assert.False(t, Reservation{Status: StatusCancelled}.Active())
}
