package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	longDateLayout = "January 02, 2006"
	clockLayout    = "15:04"
	kitchenLayout  = "03:04 PM"
)

// Date is a calendar day without a zone. Bookings are stored and compared in
// the operator's wall time; Date.At places that wall time on a zone-free
// frame (labelled UTC) and WallTime maps real instants onto the same frame.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

// At combines the day with a wall clock into an instant.
func (d Date) At(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// WallTime maps an instant onto the frame Date.At builds, reading the wall
// clock in loc. A nil loc means UTC.
func WallTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	w := t.In(loc)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
}

func (d Date) Time() time.Time { return d.At(Clock{}) }

func (d Date) String() string { return d.Time().Format(dateLayout) }

// Long renders the day the way customer messages show it, e.g. "March 01, 2025".
func (d Date) Long() string { return d.Time().Format(longDateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts "15:04" and "15:04:05"; seconds are dropped.
func ParseClock(s string) (Clock, error) {
	layout := clockLayout
	if len(s) > len(clockLayout) {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) time() time.Time {
	return time.Date(0, time.January, 1, c.Hour, c.Minute, 0, 0, time.UTC)
}

func (c Clock) String() string { return c.time().Format(clockLayout) }

// Kitchen renders a 12-hour clock with meridiem, e.g. "08:00 AM".
func (c Clock) Kitchen() string { return c.time().Format(kitchenLayout) }

// SinceMidnight is the offset of the clock from the start of the day.
func (c Clock) SinceMidnight() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}

func ClockFromOffset(d time.Duration) Clock {
	minutes := int(d / time.Minute)
	return Clock{Hour: minutes / 60, Minute: minutes % 60}
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
