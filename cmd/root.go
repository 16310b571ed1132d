package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/config"
	"github.com/theirongolddev/aqsat/internal/store"
	"github.com/theirongolddev/aqsat/internal/tracker"
)

var (
	flagDBPath   string
	flagLogLevel string
	flagCalendar string
)

var rootCmd = &cobra.Command{
	Use:           "aqsat",
	Short:         "Installment plan tracker",
	Long:          "Track installment plans, their due dates, and what is overdue, on the Persian calendar by default.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (overrides config and AQSAT_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagCalendar, "calendar", "", "Display calendar: jalali or gregorian")
}

// newLogger builds the process logger. The level comes from --log-level,
// then AQSAT_LOG_LEVEL, then the config file, then fallback.
func newLogger(cfg config.Config, out io.Writer, asJSON bool, fallback logrus.Level) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	name := flagLogLevel
	if name == "" {
		name = config.LogLevel(cfg)
	}
	log.SetLevel(fallback)
	if name != "" {
		lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		log.SetLevel(lvl)
	}
	return log, nil
}

// session bundles what every data command needs.
type session struct {
	cfg     config.Config
	log     *logrus.Logger
	db      *store.SQLite
	dbPath  string
	tracker *tracker.Tracker
	amounts cli.AmountFormatter
}

// openSession loads config, opens the database, and restores the tracker.
func openSession(ctx context.Context, log *logrus.Logger) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if log == nil {
		if log, err = newLogger(cfg, os.Stderr, false, logrus.WarnLevel); err != nil {
			return nil, err
		}
	}

	calName := cfg.General.Calendar
	if flagCalendar != "" {
		calName = flagCalendar
	}
	cal, err := calendar.ByName(calName)
	if err != nil {
		return nil, err
	}

	dbPath := resolveDBPath(cfg)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log.WithField("db", dbPath).Debug("database opened")

	t := tracker.Open(ctx, db, tracker.Options{
		Dates:         calendar.New(cal),
		Log:           log,
		UpcomingLimit: cfg.TUI.UpcomingLimit,
	})
	return &session{
		cfg:     cfg,
		log:     log,
		db:      db,
		dbPath:  dbPath,
		tracker: t,
		amounts: cli.NewAmountFormatter(cfg.Currency),
	}, nil
}

// resolveDBPath applies --db over the configured database path.
func resolveDBPath(cfg config.Config) string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return config.DBPath(cfg)
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Warn("closing database")
	}
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
