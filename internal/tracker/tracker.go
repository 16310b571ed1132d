// Package tracker is the command interface every surface drives. It owns the
// plan and settings stores, runs the recompute pipeline after each change,
// and hands back notifications and view models.
//
// A Tracker is not safe for concurrent use; callers that share one across
// goroutines must serialize access.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/pipeline"
	"github.com/theirongolddev/aqsat/internal/plans"
	"github.com/theirongolddev/aqsat/internal/schedule"
	"github.com/theirongolddev/aqsat/internal/settings"
	"github.com/theirongolddev/aqsat/internal/store"
)

// Options configures a Tracker.
type Options struct {
	Dates         *calendar.Service
	Log           logrus.FieldLogger
	UpcomingLimit int
}

// Tracker coordinates plans, settings, and derived state.
type Tracker struct {
	plans    *plans.Store
	settings *settings.Store
	dates    *calendar.Service
	log      logrus.FieldLogger
	limit    int
	view     pipeline.View
}

// New returns a Tracker over kv with nothing loaded yet.
func New(kv store.KV, opts Options) *Tracker {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Dates == nil {
		opts.Dates = calendar.New(calendar.Jalali{})
	}
	if opts.UpcomingLimit == 0 {
		opts.UpcomingLimit = pipeline.DefaultUpcomingLimit
	}
	return &Tracker{
		plans:    plans.New(kv, opts.Log),
		settings: settings.New(kv, opts.Log),
		dates:    opts.Dates,
		log:      opts.Log,
		limit:    opts.UpcomingLimit,
	}
}

// Open restores persisted state and runs the startup recompute. Unreadable
// snapshots degrade to empty state and are only logged.
func Open(ctx context.Context, kv store.KV, opts Options) *Tracker {
	t := New(kv, opts)
	t.Reload(ctx)
	return t
}

// Reload re-reads both snapshots and recomputes.
func (t *Tracker) Reload(ctx context.Context) pipeline.View {
	if err := t.settings.Load(ctx); err != nil {
		t.log.WithError(err).Warn("settings unreadable, using defaults")
	}
	n, err := t.plans.Restore(ctx)
	if err != nil {
		t.log.WithError(err).Warn("plan snapshot unreadable, starting empty")
	}
	t.log.WithField("plans", n).Debug("state restored")

	if err := t.refresh(ctx); err != nil {
		t.log.WithError(err).Warn("could not persist status changes")
	}
	return t.view
}

// refresh recomputes the view and writes back any status flips.
func (t *Tracker) refresh(ctx context.Context) error {
	t.view = pipeline.Recompute(t.plans.List(), t.settings.Get(), t.dates.Today(), t.limit)
	report := t.view.Status

	t.log.WithFields(logrus.Fields{
		"overdue":  report.Overdue,
		"due_soon": report.DueSoon,
		"changed":  len(report.Changed),
	}).Debug("recomputed")

	if len(report.Changed) == 0 {
		return nil
	}
	next := make(map[model.PlanID]model.Status, len(report.Changed))
	for _, p := range t.view.Plans {
		next[p.ID] = p.Status
	}
	t.plans.Each(func(p *model.Plan) {
		if st, ok := next[p.ID]; ok {
			p.Status = st
		}
	})
	return t.plans.Persist(ctx)
}

// View returns the view computed after the last change.
func (t *Tracker) View() pipeline.View { return t.view }

// Dates returns the date service used for scheduling and display.
func (t *Tracker) Dates() *calendar.Service { return t.dates }

// Settings returns the current user settings.
func (t *Tracker) Settings() model.Settings { return t.settings.Get() }

// Get resolves ref (an id or unique id prefix) to a plan.
func (t *Tracker) Get(ref string) (model.Plan, error) {
	return t.plans.Resolve(ref)
}

// Filter returns plans matching f, in insertion order.
func (t *Tracker) Filter(f pipeline.StatusFilter) []model.Plan {
	return pipeline.Filter(t.view.Plans, f)
}

// Search returns plans whose text fields contain query.
func (t *Tracker) Search(query string, fuzzy bool) []model.Plan {
	return pipeline.Search(t.view.Plans, query, fuzzy)
}

// Query applies a status filter and a search together.
func (t *Tracker) Query(f pipeline.StatusFilter, query string, fuzzy bool) []model.Plan {
	return pipeline.Search(pipeline.Filter(t.view.Plans, f), query, fuzzy)
}

// notify builds a mutation event, or nil when notifications are off.
func (t *Tracker) notify(sev model.Severity, format string, args ...any) *model.Notification {
	if !t.settings.Get().NotificationsEnabled {
		return nil
	}
	return &model.Notification{Message: fmt.Sprintf(format, args...), Severity: sev}
}

// commit persists and recomputes after an accepted mutation. The in-memory
// change stands even when the write fails.
func (t *Tracker) commit(ctx context.Context) error {
	persistErr := t.plans.Persist(ctx)
	if err := t.refresh(ctx); err != nil && persistErr == nil {
		persistErr = err
	}
	return persistErr
}

// CreateRequest is everything needed to create a plan.
type CreateRequest struct {
	Name             string
	Creditor         string
	Description      string
	TotalAmount      int64
	InstallmentCount int
	// Rows is a manual schedule; when empty one is generated from Start,
	// spaced Unit apart.
	Rows  []schedule.Row
	Start calendar.Date
	Unit  calendar.Unit
}

// Manual reports whether the request carries its own schedule.
func (r CreateRequest) Manual() bool { return len(r.Rows) > 0 }

func (t *Tracker) installments(req CreateRequest) ([]model.Installment, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "is required"}
	}
	if req.TotalAmount <= 0 {
		return nil, &model.ValidationError{Field: "totalAmount", Reason: "must be positive"}
	}
	if req.Manual() {
		return schedule.Resolve(req.Rows, req.TotalAmount, req.InstallmentCount)
	}
	if req.InstallmentCount <= 0 {
		return nil, &model.InvalidScheduleError{Total: req.TotalAmount, Count: req.InstallmentCount}
	}
	if req.Start.IsZero() {
		return nil, &model.ValidationError{Field: "startDate", Reason: "is required"}
	}
	return schedule.Build(t.dates, req.TotalAmount, req.InstallmentCount, req.Start, req.Unit)
}

// CreatePlan validates req, stores the new plan, and persists.
func (t *Tracker) CreatePlan(ctx context.Context, req CreateRequest) (model.Plan, *model.Notification, error) {
	insts, err := t.installments(req)
	if err != nil {
		return model.Plan{}, nil, err
	}
	id, err := t.plans.Create(model.Plan{
		Name:         strings.TrimSpace(req.Name),
		Creditor:     strings.TrimSpace(req.Creditor),
		Description:  strings.TrimSpace(req.Description),
		TotalAmount:  req.TotalAmount,
		Installments: insts,
		Status:       model.StatusUpcoming,
	})
	if err != nil {
		return model.Plan{}, nil, err
	}
	t.log.WithField("plan_id", string(id)).Info("plan created")

	err = t.commit(ctx)
	p, _ := t.plans.Get(id)
	return p, t.notify(model.SeveritySuccess, "Plan %q added", p.Name), err
}

// MarkPaid moves the plan to its terminal paid state.
func (t *Tracker) MarkPaid(ctx context.Context, ref string) (model.Plan, *model.Notification, error) {
	p, err := t.plans.Resolve(ref)
	if err != nil {
		return model.Plan{}, nil, err
	}
	if err := t.plans.Update(p.ID, func(p *model.Plan) error {
		p.Status = model.StatusPaid
		return nil
	}); err != nil {
		return model.Plan{}, nil, err
	}
	t.log.WithField("plan_id", string(p.ID)).Info("plan marked paid")

	err = t.commit(ctx)
	p, _ = t.plans.Get(p.ID)
	return p, t.notify(model.SeveritySuccess, "Plan %q marked as paid", p.Name), err
}

// DeletePlan removes the plan. Asking the user to confirm is the caller's job.
func (t *Tracker) DeletePlan(ctx context.Context, ref string) (model.Plan, *model.Notification, error) {
	p, err := t.plans.Resolve(ref)
	if err != nil {
		return model.Plan{}, nil, err
	}
	if err := t.plans.Delete(p.ID); err != nil {
		return model.Plan{}, nil, err
	}
	t.log.WithField("plan_id", string(p.ID)).Info("plan deleted")

	err = t.commit(ctx)
	return p, t.notify(model.SeverityWarning, "Plan %q deleted", p.Name), err
}

// EditPlan removes the plan and returns a request pre-filled from it. The
// caller re-submits the request through CreatePlan, or hands the original to
// RestorePlan when the edit is abandoned.
func (t *Tracker) EditPlan(ctx context.Context, ref string) (CreateRequest, *model.Notification, error) {
	p, err := t.plans.Resolve(ref)
	if err != nil {
		return CreateRequest{}, nil, err
	}
	if err := t.plans.Delete(p.ID); err != nil {
		return CreateRequest{}, nil, err
	}
	t.log.WithField("plan_id", string(p.ID)).Info("plan opened for editing")

	req := RequestFrom(p)
	err = t.commit(ctx)
	return req, t.notify(model.SeverityInfo, "Plan %q is ready for editing", p.Name), err
}

// RestorePlan puts back a plan removed by EditPlan, unchanged.
func (t *Tracker) RestorePlan(ctx context.Context, p model.Plan) (*model.Notification, error) {
	if err := t.plans.Insert(p); err != nil {
		return nil, err
	}
	t.log.WithField("plan_id", string(p.ID)).Info("plan restored")

	err := t.commit(ctx)
	return t.notify(model.SeverityInfo, "Plan %q left unchanged", p.Name), err
}

// RequestFrom turns a stored plan back into a manual create request.
func RequestFrom(p model.Plan) CreateRequest {
	req := CreateRequest{
		Name:             p.Name,
		Creditor:         p.Creditor,
		Description:      p.Description,
		TotalAmount:      p.TotalAmount,
		InstallmentCount: len(p.Installments),
		Rows:             make([]schedule.Row, len(p.Installments)),
	}
	if req.Creditor == model.UnspecifiedCreditor {
		req.Creditor = ""
	}
	for i, inst := range p.Installments {
		req.Rows[i] = schedule.Row{Date: inst.DueDate, Amount: inst.Amount}
	}
	if len(p.Installments) > 0 {
		req.Start = p.Installments[0].DueDate
	}
	return req
}

// SaveSettings validates and stores next, then recomputes since the lead
// window may have changed.
func (t *Tracker) SaveSettings(ctx context.Context, next model.Settings) (*model.Notification, error) {
	if err := t.settings.Save(ctx, next); err != nil {
		return nil, err
	}
	if err := t.refresh(ctx); err != nil {
		return nil, err
	}
	return t.notify(model.SeveritySuccess, "Settings saved"), nil
}
