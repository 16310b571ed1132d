package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Pattern names a display format. Each Calendar renders it in its own script.
type Pattern int

const (
	// PatternISO is YYYY-MM-DD in the display calendar.
	PatternISO Pattern = iota
	// PatternLong is "D MMMM YYYY".
	PatternLong
	// PatternFull is "dddd, D MMMM YYYY", used for the current-date header.
	PatternFull
)

// Calendar is the display calendar: month arithmetic and formatting happen in
// its terms, while storage always uses Gregorian ISO dates.
type Calendar interface {
	Name() string
	// AddMonths shifts d by n months, clamping the day to the target month's length.
	AddMonths(d Date, n int) Date
	Format(d Date, p Pattern) string
	// Parse reads YYYY-MM-DD written in this calendar.
	Parse(s string) (Date, error)
}

// Calendar names accepted by ByName.
const (
	NameJalali    = "jalali"
	NameGregorian = "gregorian"
)

// ByName returns the calendar registered under name.
func ByName(name string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameJalali, "persian", "shamsi":
		return Jalali{}, nil
	case NameGregorian:
		return Gregorian{}, nil
	default:
		return nil, fmt.Errorf("unknown calendar %q (want %s or %s)", name, NameJalali, NameGregorian)
	}
}

// Gregorian is the proleptic Gregorian calendar.
type Gregorian struct{}

func (Gregorian) Name() string { return NameGregorian }

func (Gregorian) AddMonths(d Date, n int) Date {
	y, m := shiftMonth(d.Year(), int(d.Month()), n)
	day := d.Day()
	if last := gregorianMonthLength(y, m); day > last {
		day = last
	}
	return NewDate(y, time.Month(m), day)
}

func (Gregorian) Format(d Date, p Pattern) string {
	switch p {
	case PatternLong:
		return d.Time().Format("2 January 2006")
	case PatternFull:
		return d.Time().Format("Monday, 2 January 2006")
	default:
		return d.Time().Format(ISOLayout)
	}
}

func (Gregorian) Parse(s string) (Date, error) {
	y, m, d, err := splitYMD(s)
	if err != nil {
		return Date{}, err
	}
	if m < 1 || m > 12 || d < 1 || d > gregorianMonthLength(y, m) {
		return Date{}, fmt.Errorf("invalid gregorian date %q", s)
	}
	return NewDate(y, time.Month(m), d), nil
}

func gregorianMonthLength(y, m int) int {
	return time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Jalali is the Solar Hijri calendar used in Iran.
type Jalali struct{}

func (Jalali) Name() string { return NameJalali }

func (Jalali) AddMonths(d Date, n int) Date {
	p := ptime.New(d.Time())
	y, m := shiftMonth(p.Year(), int(p.Month()), n)
	day := p.Day()
	if last := jalaliMonthLength(y, m); day > last {
		day = last
	}
	return fromJalali(y, m, day)
}

func (Jalali) Format(d Date, p Pattern) string {
	pt := ptime.New(d.Time())
	switch p {
	case PatternLong:
		return pt.Format("d MMM yyyy")
	case PatternFull:
		return pt.Format("E، d MMM yyyy")
	default:
		return pt.Format("yyyy-MM-dd")
	}
}

func (Jalali) Parse(s string) (Date, error) {
	y, m, d, err := splitYMD(s)
	if err != nil {
		return Date{}, err
	}
	if m < 1 || m > 12 || d < 1 || d > jalaliMonthLength(y, m) {
		return Date{}, fmt.Errorf("invalid jalali date %q", s)
	}
	return fromJalali(y, m, d), nil
}

func fromJalali(y, m, d int) Date {
	// Noon keeps the conversion clear of any offset rounding in the library.
	return FromTime(ptime.Date(y, ptime.Month(m), d, 12, 0, 0, 0, time.UTC).Time())
}

func jalaliMonthLength(y, m int) int {
	ny, nm := shiftMonth(y, m, 1)
	next := ptime.Date(ny, ptime.Month(nm), 1, 12, 0, 0, 0, time.UTC).Time()
	return ptime.New(next.AddDate(0, 0, -1)).Day()
}

// shiftMonth adds n months to a 1-based (year, month) pair.
func shiftMonth(y, m, n int) (int, int) {
	idx := m - 1 + n
	y += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		y--
	}
	return y, idx + 1
}

func splitYMD(s string) (int, int, int, error) {
	s = strings.TrimSpace(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(toLatinDigits(part))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// toLatinDigits maps Persian and Arabic-Indic digits to ASCII.
func toLatinDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, s)
}
