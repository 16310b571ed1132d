package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/config"
	"github.com/theirongolddev/aqsat/internal/daemon"
)

const daemonStopTimeout = 8 * time.Second

var (
	flagDaemonAddr         string
	flagDaemonSchedule     string
	flagDaemonEventsBuffer int
	flagDaemonDetach       bool
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background reminder daemon with HTTP/SSE endpoints",
	Long: `Run a background reminder daemon.

The daemon reloads the database on a cron schedule, reclassifies overdue
plans and publishes reminders. It serves /healthz, /v1/status,
/v1/events (server-sent events) and POST /v1/refresh.

While it runs it keeps a record of its pid and address in aqsatd.json in
the data directory; with --detach its output goes to aqsatd.log there.`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the running daemon to recompute now",
	RunE:  runDaemonRefresh,
}

var daemonEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the events the daemon has retained",
	RunE:  runDaemonEvents,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")

	daemonCmd.Flags().StringVar(&flagDaemonSchedule, "schedule", "", "Cron schedule for recompute runs (default from config)")
	daemonCmd.Flags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonRefreshCmd)
	daemonCmd.AddCommand(daemonEventsCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonRecord is what a running daemon leaves in the data directory for
// the other daemon subcommands.
type daemonRecord struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	DBPath    string    `json:"db_path"`
	Schedule  string    `json:"schedule"`
	StartedAt time.Time `json:"started_at"`
}

func daemonRecordPath() string { return filepath.Join(config.DataDir(), "aqsatd.json") }

func daemonLogPath() string { return filepath.Join(config.DataDir(), "aqsatd.log") }

func readDaemonRecord(path string) (daemonRecord, error) {
	var rec daemonRecord
	//nolint:gosec // the record lives in the user's data directory
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("daemon record %s: %w", path, err)
	}
	if rec.PID <= 0 {
		return rec, fmt.Errorf("daemon record %s: invalid pid %d", path, rec.PID)
	}
	return rec, nil
}

func (r daemonRecord) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// alive reports whether the recorded process still exists.
func (r daemonRecord) alive() bool {
	proc, err := os.FindProcess(r.PID)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// runningDaemon returns the record of a live daemon. A record left behind
// by a process that is gone is removed and reported as os.ErrNotExist.
func runningDaemon(path string) (daemonRecord, error) {
	rec, err := readDaemonRecord(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(path)
		}
		return daemonRecord{}, os.ErrNotExist
	}
	if !rec.alive() {
		_ = os.Remove(path)
		return daemonRecord{}, os.ErrNotExist
	}
	return rec, nil
}

// daemonConfig layers the daemon flags over the config file.
func daemonConfig(cfg config.Config, dbPath string) daemon.Config {
	dcfg := daemon.Config{
		DBPath:       dbPath,
		Addr:         cfg.Daemon.Addr,
		Schedule:     cfg.Daemon.Schedule,
		EventsBuffer: cfg.Daemon.EventsBuffer,
	}
	if flagDaemonAddr != "" {
		dcfg.Addr = flagDaemonAddr
	}
	if flagDaemonSchedule != "" {
		dcfg.Schedule = flagDaemonSchedule
	}
	if flagDaemonEventsBuffer > 0 {
		dcfg.EventsBuffer = flagDaemonEventsBuffer
	}
	return dcfg
}

// childArgs spells out a resolved configuration for the detached process,
// so it runs with exactly what the parent reported.
func childArgs(dcfg daemon.Config) []string {
	args := []string{
		"daemon", "--child",
		"--db", dcfg.DBPath,
		"--addr", dcfg.Addr,
		"--schedule", dcfg.Schedule,
		"--events-buffer", strconv.Itoa(dcfg.EventsBuffer),
	}
	if flagLogLevel != "" {
		args = append(args, "--log-level", flagLogLevel)
	}
	if flagCalendar != "" {
		args = append(args, "--calendar", flagCalendar)
	}
	return args
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if rec, err := runningDaemon(daemonRecordPath()); err == nil {
		return fmt.Errorf("daemon already running (pid %d on %s)", rec.PID, rec.Addr)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDaemonDetach {
		return startDaemonDetached(daemonConfig(cfg, resolveDBPath(cfg)))
	}
	return runDaemonForeground(cfg)
}

func startDaemonDetached(dcfg daemon.Config) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	logPath := daemonLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	//nolint:gosec // the log lives in the user's data directory
	logf, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(dcfg)...) //nolint:gosec // re-runs this binary
	child.Stdout = logf
	child.Stderr = logf
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}
	pid := child.Process.Pid
	_ = child.Process.Release()

	fmt.Printf("  Started daemon (pid %d) on http://%s\n", pid, dcfg.Addr)
	fmt.Printf("  Database: %s\n", dcfg.DBPath)
	fmt.Printf("  Log: %s\n", logPath)
	return nil
}

func runDaemonForeground(cfg config.Config) error {
	log, err := newLogger(cfg, os.Stderr, flagDaemonChild, logrus.InfoLevel)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(ctx, log)
	if err != nil {
		return err
	}
	defer s.Close()

	dcfg := daemonConfig(s.cfg, s.dbPath)
	svc, err := daemon.New(dcfg, s.tracker, log)
	if err != nil {
		return err
	}

	recPath := daemonRecordPath()
	rec := daemonRecord{
		PID:       os.Getpid(),
		Addr:      dcfg.Addr,
		DBPath:    dcfg.DBPath,
		Schedule:  dcfg.Schedule,
		StartedAt: time.Now().UTC(),
	}
	if err := rec.save(recPath); err != nil {
		return fmt.Errorf("write daemon record: %w", err)
	}
	defer func() { _ = os.Remove(recPath) }()

	log.WithFields(logrus.Fields{
		"addr":     dcfg.Addr,
		"schedule": dcfg.Schedule,
		"db":       dcfg.DBPath,
		"pid":      rec.PID,
	}).Info("daemon starting")
	if !flagDaemonChild {
		fmt.Printf("  aqsat daemon listening on http://%s\n", dcfg.Addr)
		fmt.Println("  Stop with Ctrl+C or `aqsat daemon stop`.")
	}

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// daemonAddr resolves the address of the running daemon: its record, then
// --addr, then the config.
func daemonAddr() string {
	if rec, err := readDaemonRecord(daemonRecordPath()); err == nil && rec.Addr != "" {
		return rec.Addr
	}
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	cfg, _ := config.Load()
	return cfg.Daemon.Addr
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	rec, err := runningDaemon(daemonRecordPath())
	if err != nil {
		fmt.Println("  Daemon: not running")
		return nil
	}
	fmt.Printf("  Daemon PID: %d (up %s)\n", rec.PID, time.Since(rec.StartedAt).Round(time.Second))
	fmt.Printf("  Address: http://%s\n", rec.Addr)

	st, err := daemon.NewClient(rec.Addr).Status(cmd.Context())
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	fmt.Printf("  Database: %s\n", st.DBPath)
	fmt.Printf("  Schedule: %s\n", st.Schedule)
	if st.LastRunAt.IsZero() {
		fmt.Println("  Last run: pending")
	} else {
		fmt.Printf("  Last run: %s\n", st.LastRunAt.Local().Format(time.RFC3339))
	}
	if !st.NextRunAt.IsZero() {
		fmt.Printf("  Next run: %s\n", st.NextRunAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Run count: %d\n", st.RunCount)
	fmt.Printf("  Plans: %d\n", st.Summary.Plans)
	fmt.Printf("  Overdue installments: %d\n", st.Summary.Overdue)
	fmt.Printf("  Due soon: %d\n", st.Summary.DueSoon)
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonRefresh(cmd *cobra.Command, _ []string) error {
	st, err := daemon.NewClient(daemonAddr()).Refresh(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("  Recomputed (run %d): %d plans, %d overdue, %d due soon\n",
		st.RunCount, st.Summary.Plans, st.Summary.Overdue, st.Summary.DueSoon)
	return nil
}

func runDaemonEvents(cmd *cobra.Command, _ []string) error {
	events, err := daemon.NewClient(daemonAddr()).Events(cmd.Context())
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("  No events yet.")
		return nil
	}
	for _, ev := range events {
		line := fmt.Sprintf("  %4d  %s  %-13s", ev.ID, ev.Timestamp.Local().Format(time.DateTime), ev.Type)
		switch {
		case ev.Notification != nil:
			line += "  " + ev.Notification.Message
		case len(ev.Changed) > 0:
			line += fmt.Sprintf("  %d plans changed status", len(ev.Changed))
		default:
			line += fmt.Sprintf("  %d plans", ev.Snapshot.Plans)
		}
		fmt.Println(line)
	}
	return nil
}

func runDaemonStop(cmd *cobra.Command, _ []string) error {
	recPath := daemonRecordPath()
	rec, err := runningDaemon(recPath)
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(rec.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	if err := waitForExit(cmd.Context(), rec, daemonStopTimeout); err != nil {
		return err
	}
	_ = os.Remove(recPath)
	fmt.Printf("  Stopped daemon (pid %d)\n", rec.PID)
	return nil
}

// waitForExit polls until the recorded process is gone or timeout passes.
func waitForExit(ctx context.Context, rec daemonRecord, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for rec.alive() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) did not exit within %s", rec.PID, timeout)
		case <-tick.C:
		}
	}
	return nil
}
