package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with minute granularity, stored as minutes
// since midnight. The remote store sends both "HH:MM" strings and full
// timestamps; both are accepted, internal comparisons never touch strings.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts "HH:MM", "HH:MM:SS" and RFC3339 timestamps.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	if raw == "" {
		return 0, fmt.Errorf("time value is empty")
	}

	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute()), nil
		}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return NewTimeOfDay(t.Hour(), t.Minute()), nil
	}

	return 0, fmt.Errorf("unsupported time format: %q", raw)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < 24*60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open [Start, End) time range on a single calendar date.
type Interval struct {
	Start TimeOfDay `json:"startTime"`
	End   TimeOfDay `json:"endTime"`
}

// Overlaps reports whether two half-open intervals intersect. An interval
// ending exactly when another begins does not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return !(iv.End <= other.Start || iv.Start >= other.End)
}
