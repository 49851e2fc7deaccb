package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date without time or zone. The remote store sends dates
// as "YYYY/MM/DD" in some payloads and "YYYY-MM-DD" in others; ParseDate
// normalizes both, and the slash form is the canonical wire format.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current date in local time.
func Today() Date {
	return DateOf(time.Now())
}

func ParseDate(raw string) (Date, error) {
	if raw == "" {
		return Date{}, fmt.Errorf("date value is empty")
	}

	for _, layout := range []string{"2006/01/02", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOf(t), nil
		}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOf(t), nil
	}

	return Date{}, fmt.Errorf("unsupported date format: %q", raw)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Equal(other Date) bool {
	return d == other
}

// Time returns midnight local time of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// String renders the canonical "YYYY/MM/DD" wire form.
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, int(d.Month), d.Day)
}

// ISO renders "YYYY-MM-DD" for HTML date inputs and query params.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
