// Package daemon provides the long-running reminder service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Addr         string
	Schedule     string
	EventsBuffer int
}

// Source reloads persisted state and recomputes it. *tracker.Tracker
// satisfies it.
type Source interface {
	Reload(ctx context.Context) pipeline.View
}

// Snapshot is a compact reminder state for status/event payloads.
type Snapshot struct {
	At                time.Time               `json:"at"`
	Today             calendar.Date           `json:"today"`
	Plans             int                     `json:"plans"`
	Summary           pipeline.Summary        `json:"summary"`
	Overdue           int                     `json:"overdue"`
	DueSoon           int                     `json:"due_soon"`
	NotificationCount int                     `json:"notification_count"`
	Upcoming          []pipeline.UpcomingItem `json:"upcoming"`
}

// Event is emitted on the first run, when a plan changes status, and
// whenever a run produces a reminder.
type Event struct {
	ID           int64               `json:"id"`
	Type         string              `json:"type"`
	Timestamp    time.Time           `json:"timestamp"`
	Snapshot     Snapshot            `json:"snapshot"`
	Notification *model.Notification `json:"notification,omitempty"`
	Changed      []model.PlanID      `json:"changed,omitempty"`
}

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventStatusChange = "status_change"
	EventReminder     = "reminder"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRunAt       time.Time `json:"last_run_at"`
	NextRunAt       time.Time `json:"next_run_at"`
	Schedule        string    `json:"schedule"`
	RunCount        int64     `json:"run_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	src   Source
	log   logrus.FieldLogger
	sched cron.Schedule
	cron  *cron.Cron
	entry cron.EntryID

	runMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	runCount    int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, src Source, log logrus.FieldLogger) (*Service, error) {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 9 * * *"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	sched, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		log:       log,
		sched:     sched,
		cron:      cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}, nil
}

// Run starts HTTP endpoints and the recompute schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.entry = s.cron.Schedule(s.sched, cron.FuncJob(func() { s.RunOnce(ctx) }))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/refresh", s.handleRefresh)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.RunOnce(ctx)

	s.cron.Start()
	s.log.WithFields(logrus.Fields{
		"addr":     s.cfg.Addr,
		"schedule": s.cfg.Schedule,
	}).Info("reminder daemon started")

	select {
	case <-ctx.Done():
		<-s.cron.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("reminder daemon stopping")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		s.cron.Stop()
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// RunOnce reloads state, recomputes, and publishes the resulting events.
func (s *Service) RunOnce(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return
	}

	view := s.src.Reload(ctx)
	now := time.Now()
	snap := snapshotFromView(view, now)
	report := view.Status

	var evs []Event

	s.mu.Lock()
	first := !s.hasSnapshot
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastRunAt = now
	s.runCount++
	s.lastError = ""

	next := func(typ string) Event {
		s.nextEventID++
		return Event{ID: s.nextEventID, Type: typ, Timestamp: now, Snapshot: snap}
	}
	if first {
		evs = append(evs, next(EventSnapshot))
	}
	if len(report.Changed) > 0 {
		ev := next(EventStatusChange)
		ev.Changed = append([]model.PlanID(nil), report.Changed...)
		evs = append(evs, ev)
	}
	if report.Notification != nil {
		ev := next(EventReminder)
		n := *report.Notification
		ev.Notification = &n
		evs = append(evs, ev)
	}
	s.mu.Unlock()

	entry := s.log.WithFields(logrus.Fields{
		"overdue":  report.Overdue,
		"due_soon": report.DueSoon,
		"changed":  len(report.Changed),
	})
	switch n := report.Notification; {
	case n == nil:
		entry.Debug("recompute finished")
	case n.Severity == model.SeverityError:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}

	for _, ev := range evs {
		s.publishEvent(ev)
	}
}

func snapshotFromView(v pipeline.View, at time.Time) Snapshot {
	return Snapshot{
		At:                at,
		Today:             v.Today,
		Plans:             len(v.Plans),
		Summary:           v.Summary,
		Overdue:           v.Status.Overdue,
		DueSoon:           v.Status.DueSoon,
		NotificationCount: v.Status.NotificationCount(),
		Upcoming:          v.Upcoming,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	nextRun := s.cron.Entry(s.entry).Next
	if nextRun.IsZero() {
		nextRun = s.sched.Next(time.Now())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRunAt:       s.lastRunAt,
		NextRunAt:       nextRun,
		Schedule:        s.cfg.Schedule,
		RunCount:        s.runCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

// handleRefresh runs a recompute out of schedule, e.g. after a CLI edit.
func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.RunOnce(r.Context())
	s.handleStatus(w, r)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
