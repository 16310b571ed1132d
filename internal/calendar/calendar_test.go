package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-03-20", want: "2024-03-20"},
		{in: " 2024-12-31 ", want: "2024-12-31"},
		{in: "2024-05-01T00:00:00.000Z", want: "2024-05-01"},
		{in: "2024-05-01T23:30:00+03:30", want: "2024-05-01"},
		{in: "1403/01/01", wantErr: true},
		{in: "1403-08-15", want: "2024-11-05"},
		{in: "1402-12-29", want: "2024-03-19"},
		{in: "1403-07-31", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISO(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Due  Date `json:"due"`
		Late Date `json:"late"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-06-15","late":""}`), &payload))
	assert.Equal(t, NewDate(2024, time.June, 15), payload.Due)
	assert.True(t, payload.Late.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-06-15","late":""}`, string(out))
}

func TestGregorianAddMonthsClamps(t *testing.T) {
	g := Gregorian{}
	assert.Equal(t, "2024-02-29", g.AddMonths(MustParseISO("2024-01-31"), 1).String())
	assert.Equal(t, "2025-01-31", g.AddMonths(MustParseISO("2024-12-31"), 1).String())
	assert.Equal(t, "2023-11-30", g.AddMonths(MustParseISO("2024-01-30"), -2).String())
}

func TestJalaliConversion(t *testing.T) {
	j := Jalali{}
	nowruz := MustParseISO("2024-03-20")

	assert.Equal(t, "1403-01-01", j.Format(nowruz, PatternISO))

	parsed, err := j.Parse("1403-01-01")
	require.NoError(t, err)
	assert.Equal(t, nowruz, parsed)

	parsed, err = j.Parse("۱۴۰۳/۰۱/۰۱")
	require.NoError(t, err)
	assert.Equal(t, nowruz, parsed)

	_, err = j.Parse("1403-07-31")
	assert.Error(t, err, "Mehr has 30 days")
}

func TestJalaliAddMonths(t *testing.T) {
	j := Jalali{}

	// 1 Farvardin 1403 + 1 month = 1 Ordibehesht 1403.
	assert.Equal(t, "2024-04-20", j.AddMonths(MustParseISO("2024-03-20"), 1).String())

	// 31 Shahrivar 1403 + 1 month clamps to 30 Mehr 1403.
	assert.Equal(t, "2024-10-21", j.AddMonths(MustParseISO("2024-09-21"), 1).String())

	// Crossing the year boundary.
	got := j.AddMonths(MustParseISO("2024-03-20"), 12)
	assert.Equal(t, "1404-01-01", j.Format(got, PatternISO))
}

func TestServiceAddUnits(t *testing.T) {
	svc := New(Gregorian{})
	start := MustParseISO("2024-01-31")

	tests := []struct {
		unit  Unit
		count int
		want  string
	}{
		{UnitDay, 1, "2024-02-01"},
		{UnitWeek, 2, "2024-02-14"},
		{UnitMonth, 1, "2024-02-29"},
		{UnitYear, 1, "2025-01-31"},
		{UnitDay, -31, "2023-12-31"},
	}
	for _, tt := range tests {
		got, err := svc.AddUnits(start, tt.unit, tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String(), "%d %s", tt.count, tt.unit)
	}

	_, err := svc.AddUnits(start, Unit("fortnight"), 1)
	assert.Error(t, err)
}

func TestServiceTodayDropsTimeOfDay(t *testing.T) {
	svc := New(Gregorian{})
	svc.Now = fixedClock(time.Date(2024, time.May, 10, 23, 59, 59, 0, time.Local))

	today := svc.Today()
	assert.Equal(t, "2024-05-10", today.String())
	assert.Equal(t, OrderEqual, svc.Compare(today, MustParseISO("2024-05-10")))
	assert.Equal(t, OrderBefore, svc.Compare(today, MustParseISO("2024-05-11")))
	assert.Equal(t, OrderAfter, svc.Compare(today, MustParseISO("2024-05-09")))
}

func TestDaysBetween(t *testing.T) {
	svc := New(Gregorian{})
	assert.Equal(t, 0, svc.DaysBetween(MustParseISO("2024-05-10"), MustParseISO("2024-05-10")))
	assert.Equal(t, 2, svc.DaysBetween(MustParseISO("2024-05-10"), MustParseISO("2024-05-12")))
	assert.Equal(t, -1, svc.DaysBetween(MustParseISO("2024-05-10"), MustParseISO("2024-05-09")))
	assert.Equal(t, 366, svc.DaysBetween(MustParseISO("2024-01-01"), MustParseISO("2025-01-01")))
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("Months")
	require.NoError(t, err)
	assert.Equal(t, UnitMonth, u)

	u, err = ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, UnitMonth, u)

	_, err = ParseUnit("decade")
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	c, err := ByName("Gregorian")
	require.NoError(t, err)
	assert.Equal(t, NameGregorian, c.Name())

	c, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, NameJalali, c.Name())

	_, err = ByName("lunar")
	assert.Error(t, err)
}
