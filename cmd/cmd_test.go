package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/config"
	"github.com/theirongolddev/aqsat/internal/daemon"
	"github.com/theirongolddev/aqsat/internal/schedule"
	"github.com/theirongolddev/aqsat/internal/tracker"
)

func gregorianDates() *calendar.Service {
	svc := calendar.New(calendar.Gregorian{})
	svc.Now = func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local) }
	return svc
}

func resetAddFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		addName, addCreditor, addDescription, addTotal = "", "", "", ""
		addCount, addStart, addEvery = 0, "", "month"
		addDates, addAmounts = nil, nil
	})
}

func TestRequestFromFlagsGenerated(t *testing.T) {
	resetAddFlags(t)
	addName, addTotal, addCount, addEvery = "Laptop", "1,200", 3, "weeks"

	req, err := requestFromFlags(gregorianDates())
	require.NoError(t, err)
	assert.Equal(t, int64(1200), req.TotalAmount)
	assert.Equal(t, 3, req.InstallmentCount)
	assert.Equal(t, calendar.UnitWeek, req.Unit)
	assert.Equal(t, "2024-06-10", req.Start.String())
	assert.False(t, req.Manual())
}

func TestRequestFromFlagsManualRows(t *testing.T) {
	resetAddFlags(t)
	addName, addTotal = "Rent", "300"
	addDates = []string{"2024-07-01", "2024-08-01"}
	addAmounts = []string{"100"}

	req, err := requestFromFlags(gregorianDates())
	require.NoError(t, err)
	require.Len(t, req.Rows, 2)
	assert.Equal(t, int64(100), req.Rows[0].Amount)
	assert.Equal(t, int64(0), req.Rows[1].Amount)
	assert.Equal(t, "2024-08-01", req.Rows[1].Date.String())
}

func TestRequestFromFlagsErrors(t *testing.T) {
	resetAddFlags(t)
	dates := gregorianDates()

	addName, addTotal = "Bad", "abc"
	_, err := requestFromFlags(dates)
	assert.ErrorContains(t, err, "--total")

	addTotal = "100"
	addAmounts = []string{"50"}
	_, err = requestFromFlags(dates)
	assert.ErrorContains(t, err, "needs a --date")

	addAmounts = nil
	addDates = []string{"2024-13-40"}
	_, err = requestFromFlags(dates)
	assert.ErrorContains(t, err, "--date")

	addDates = nil
	addEvery = "fortnight"
	_, err = requestFromFlags(dates)
	assert.ErrorContains(t, err, "unknown unit")
}

func TestPlanFieldsKeepScheduleResplits(t *testing.T) {
	dates := gregorianDates()
	base := tracker.CreateRequest{
		Name:             "Phone",
		TotalAmount:      300,
		InstallmentCount: 2,
		Rows: []schedule.Row{
			{Date: calendar.MustParseISO("2024-07-01"), Amount: 100},
			{Date: calendar.MustParseISO("2024-08-01"), Amount: 200},
		},
	}

	f := fieldsFrom(base, dates)
	assert.True(t, f.keepSchedule)
	assert.Equal(t, "300", f.total)
	assert.Equal(t, "2024-07-01", f.start)

	req, err := f.request(base, dates)
	require.NoError(t, err)
	assert.Equal(t, base.Rows, req.Rows)

	f.total = "301"
	req, err = f.request(base, dates)
	require.NoError(t, err)
	assert.Equal(t, int64(150), req.Rows[0].Amount)
	assert.Equal(t, int64(151), req.Rows[1].Amount)
	assert.Equal(t, int64(100), base.Rows[0].Amount, "base rows untouched")
}

func TestPlanFieldsRegenerate(t *testing.T) {
	dates := gregorianDates()
	f := fieldsFrom(tracker.CreateRequest{}, dates)
	assert.Equal(t, "2024-06-10", f.start)
	assert.Equal(t, "month", f.unit)

	f.name, f.total, f.count = "TV", "900", "3"
	req, err := f.request(tracker.CreateRequest{}, dates)
	require.NoError(t, err)
	assert.Equal(t, 3, req.InstallmentCount)
	assert.Equal(t, calendar.UnitMonth, req.Unit)
	assert.Empty(t, req.Rows)

	f.count = "three"
	_, err = f.request(tracker.CreateRequest{}, dates)
	assert.ErrorContains(t, err, "installments")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, positiveInt("4"))
	assert.Error(t, positiveInt("0"))
	assert.Error(t, positiveInt("x"))
	assert.Error(t, notEmpty("name")("  "))
	assert.NoError(t, notEmpty("name")("a"))
}

func TestDaemonConfigLayersFlags(t *testing.T) {
	t.Cleanup(func() { flagDaemonAddr, flagDaemonSchedule, flagDaemonEventsBuffer = "", "", 0 })
	cfg := config.DefaultConfig()

	dcfg := daemonConfig(cfg, "/tmp/a.db")
	assert.Equal(t, daemon.Config{DBPath: "/tmp/a.db", Addr: "127.0.0.1:8797", Schedule: "0 9 * * *", EventsBuffer: 200}, dcfg)

	flagDaemonAddr, flagDaemonSchedule, flagDaemonEventsBuffer = "127.0.0.1:9000", "@hourly", 10
	dcfg = daemonConfig(cfg, "/tmp/a.db")
	assert.Equal(t, "127.0.0.1:9000", dcfg.Addr)
	assert.Equal(t, "@hourly", dcfg.Schedule)
	assert.Equal(t, 10, dcfg.EventsBuffer)
}

func TestChildArgsCarryResolvedConfig(t *testing.T) {
	t.Cleanup(func() { flagLogLevel, flagCalendar = "", "" })
	dcfg := daemon.Config{DBPath: "/tmp/a.db", Addr: "127.0.0.1:1", Schedule: "@daily", EventsBuffer: 5}

	assert.Equal(t, []string{
		"daemon", "--child", "--db", "/tmp/a.db", "--addr", "127.0.0.1:1",
		"--schedule", "@daily", "--events-buffer", "5",
	}, childArgs(dcfg))

	flagLogLevel, flagCalendar = "debug", "gregorian"
	args := childArgs(dcfg)
	assert.Equal(t, []string{"--log-level", "debug", "--calendar", "gregorian"}, args[len(args)-4:])
	assert.NotContains(t, args, "--detach")
}

func TestDaemonRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "aqsatd.json")

	_, err := runningDaemon(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	rec := daemonRecord{PID: os.Getpid(), Addr: "127.0.0.1:1", DBPath: "/tmp/x.db", Schedule: "@daily"}
	require.NoError(t, rec.save(path))
	back, err := runningDaemon(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Addr, back.Addr)
	assert.Equal(t, rec.DBPath, back.DBPath)

	gone := daemonRecord{PID: 1 << 30, Addr: "127.0.0.1:2"}
	require.NoError(t, gone.save(path))
	_, err = runningDaemon(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, path)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = readDaemonRecord(path)
	assert.Error(t, err)
	_, err = runningDaemon(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, path)
}

func TestWaitForExitTimesOut(t *testing.T) {
	self := daemonRecord{PID: os.Getpid()}
	err := waitForExit(context.Background(), self, 20*time.Millisecond)
	assert.ErrorContains(t, err, "did not exit")

	gone := daemonRecord{PID: 1 << 30}
	assert.NoError(t, waitForExit(context.Background(), gone, time.Second))
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "a, b", joinNames([]string{"a", "b"}))
}
