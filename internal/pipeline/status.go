package pipeline

import (
	"fmt"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
)

// StatusReport is the outcome of one status pass.
type StatusReport struct {
	// Overdue counts installments dated before today on unpaid plans.
	Overdue int `json:"overdue"`
	// DueSoon counts installments inside the lead window on unpaid plans.
	DueSoon int `json:"dueSoon"`
	// Changed lists plans whose status flipped during the pass.
	Changed []model.PlanID `json:"changed,omitempty"`
	// Notification is nil when nothing needs attention or reminders are off.
	Notification *model.Notification `json:"notification,omitempty"`
}

// NotificationCount is the badge number: everything that needs attention.
func (r StatusReport) NotificationCount() int { return r.Overdue + r.DueSoon }

// Classify returns the status an unpaid plan should have today. Paid plans
// keep their status.
func Classify(p model.Plan, today calendar.Date) model.Status {
	if p.IsPaid() {
		return model.StatusPaid
	}
	for _, inst := range p.Installments {
		if inst.DueDate.Before(today) {
			return model.StatusPast
		}
	}
	return model.StatusUpcoming
}

// countReminders tallies overdue and due-soon installments of unpaid plans.
// An installment is counted at most once.
func countReminders(p model.Plan, today, horizon calendar.Date) (overdue, soon int) {
	if p.IsPaid() {
		return 0, 0
	}
	for _, inst := range p.Installments {
		switch {
		case inst.DueDate.Before(today):
			overdue++
		case !inst.DueDate.After(horizon):
			soon++
		}
	}
	return overdue, soon
}

// UpdateStatuses reclassifies plans in place and builds the reminder
// notification for the cycle. Running it twice on the same day is a no-op
// the second time.
func UpdateStatuses(plans []model.Plan, settings model.Settings, today calendar.Date) StatusReport {
	var report StatusReport
	horizon := today.AddDays(settings.NotificationDays)

	for i := range plans {
		p := &plans[i]
		if next := Classify(*p, today); next != p.Status {
			p.Status = next
			report.Changed = append(report.Changed, p.ID)
		}
		o, s := countReminders(*p, today, horizon)
		report.Overdue += o
		report.DueSoon += s
	}

	if settings.NotificationsEnabled {
		report.Notification = reminder(report.Overdue, report.DueSoon, settings.NotificationDays)
	}
	return report
}

// reminder picks the single notification for a cycle; overdue wins.
func reminder(overdue, soon, leadDays int) *model.Notification {
	switch {
	case overdue > 0:
		return &model.Notification{
			Message:  fmt.Sprintf("You have %d overdue %s. Please pay as soon as possible.", overdue, plural(overdue, "installment")),
			Severity: model.SeverityError,
		}
	case soon > 0:
		return &model.Notification{
			Message:  fmt.Sprintf("You have %d %s due in the next %d %s.", soon, plural(soon, "installment"), leadDays, plural(leadDays, "day")),
			Severity: model.SeverityInfo,
		}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
