// Package calendar provides day-resolution dates and the calendar arithmetic
// and formatting used to schedule and display installments.
//
// Dates are stored in a calendar-agnostic ISO form (Gregorian YYYY-MM-DD).
// Display and month arithmetic go through a Calendar, which for the default
// configuration is the Jalali (Persian) calendar.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the storage layout of a Date.
const ISOLayout = "2006-01-02"

// Date is a civil date with no time-of-day component.
// The zero Date means "no date".
type Date struct {
	t time.Time
}

// NewDate returns the Gregorian date y-m-d. Out-of-range values normalize
// the same way time.Date does.
func NewDate(y int, m time.Month, d int) Date {
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// FromTime returns the date t falls on in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// jalaliYearCutoff separates stored Jalali text from Gregorian dates. Jalali
// years sit around 1400 while any plausible Gregorian one is far above it.
const jalaliYearCutoff = 1700

// ParseISO parses a storage date. A full RFC3339 timestamp is accepted too
// and contributes its UTC date, which is how older snapshots stored dates.
// Date-only text with a year below 1700 was written in the Jalali calendar
// by older versions and is converted.
func ParseISO(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(ISOLayout, s); err == nil {
		if t.Year() < jalaliYearCutoff {
			return Jalali{}.Parse(s)
		}
		return FromTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return FromTime(t.UTC()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// MustParseISO is ParseISO for literals known to be valid.
func MustParseISO(s string) Date {
	d, err := ParseISO(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date at 00:00 UTC.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the whole days from d to o; negative when o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// String returns the storage form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(ISOLayout)
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", an RFC3339 timestamp, "" or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISO(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
