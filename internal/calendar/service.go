package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Unit is a calendar unit for AddUnits.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// ParseUnit accepts singular or plural unit names.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return u, nil
	case "":
		return UnitMonth, nil
	}
	return "", fmt.Errorf("unknown unit %q (want day, week, month or year)", s)
}

// Ordering is the result of Compare.
type Ordering int

const (
	OrderBefore Ordering = -1
	OrderEqual  Ordering = 0
	OrderAfter  Ordering = 1
)

// Service is the date provider consumed by the scheduling and status code.
// It holds no state beyond its calendar and clock.
type Service struct {
	Calendar Calendar
	// Now is the wall clock; tests replace it.
	Now func() time.Time
}

// New returns a Service over cal using the system clock.
func New(cal Calendar) *Service {
	if cal == nil {
		cal = Jalali{}
	}
	return &Service{Calendar: cal, Now: time.Now}
}

// Today returns the current local date with the time of day dropped.
func (s *Service) Today() Date {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return FromTime(now())
}

// AddUnits shifts d by count units. Months and years move in the display
// calendar, so "one month" after 1 Farvardin is 1 Ordibehesht.
func (s *Service) AddUnits(d Date, unit Unit, count int) (Date, error) {
	switch unit {
	case UnitDay:
		return d.AddDays(count), nil
	case UnitWeek:
		return d.AddDays(7 * count), nil
	case UnitMonth:
		return s.Calendar.AddMonths(d, count), nil
	case UnitYear:
		return s.Calendar.AddMonths(d, 12*count), nil
	}
	return Date{}, fmt.Errorf("unknown unit %q", unit)
}

// Format renders d in the display calendar.
func (s *Service) Format(d Date, p Pattern) string {
	if d.IsZero() {
		return ""
	}
	return s.Calendar.Format(d, p)
}

// Compare orders two dates.
func (s *Service) Compare(a, b Date) Ordering {
	switch {
	case a.Before(b):
		return OrderBefore
	case a.After(b):
		return OrderAfter
	}
	return OrderEqual
}

// DaysBetween returns the whole days from "from" to "to"; negative when to is earlier.
func (s *Service) DaysBetween(from, to Date) int {
	return from.DaysUntil(to)
}

// ParseDisplay reads a YYYY-MM-DD date written in the display calendar.
func (s *Service) ParseDisplay(str string) (Date, error) {
	return s.Calendar.Parse(str)
}
