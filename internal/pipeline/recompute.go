package pipeline

import (
	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
)

// View is everything a surface needs to draw the dashboard.
type View struct {
	Today    calendar.Date  `json:"today"`
	Plans    []model.Plan   `json:"plans"`
	Summary  Summary        `json:"summary"`
	Upcoming []UpcomingItem `json:"upcoming"`
	Status   StatusReport   `json:"status"`
}

// Notification returns the cycle's reminder, or nil.
func (v View) Notification() *model.Notification { return v.Status.Notification }

// Recompute runs the status pass over a copy of plans and derives the view
// from the result. The input slice is not modified.
func Recompute(plans []model.Plan, settings model.Settings, today calendar.Date, limit int) View {
	work := make([]model.Plan, len(plans))
	for i, p := range plans {
		work[i] = p.Clone()
	}

	status := UpdateStatuses(work, settings, today)
	return View{
		Today:    today,
		Plans:    work,
		Summary:  Summarize(work, today),
		Upcoming: UpcomingList(work, today, limit),
		Status:   status,
	}
}
