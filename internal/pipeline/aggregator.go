// Package pipeline derives statuses, reminders, and dashboard figures from
// the plan collection.
package pipeline

import (
	"sort"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
)

// DefaultUpcomingLimit is the length of the upcoming list on the dashboard.
const DefaultUpcomingLimit = 5

// Summary holds the stat-card figures.
type Summary struct {
	TotalOutstanding int64 `json:"totalOutstanding"`
	UpcomingCount    int   `json:"upcomingCount"`
	OverdueCount     int   `json:"overdueCount"`
	PaidCount        int   `json:"paidCount"`
}

// Summarize computes debt figures. Amounts and counts are per installment,
// each classified by its own date; paid plans only add to PaidCount.
func Summarize(plans []model.Plan, today calendar.Date) Summary {
	var s Summary
	for _, p := range plans {
		if p.IsPaid() {
			s.PaidCount++
			continue
		}
		for _, inst := range p.Installments {
			s.TotalOutstanding += inst.Amount
			if inst.DueDate.Before(today) {
				s.OverdueCount++
			} else {
				s.UpcomingCount++
			}
		}
	}
	return s
}

// NextDue returns the first installment dated today or later.
func NextDue(p model.Plan, today calendar.Date) (model.Installment, bool) {
	for _, inst := range p.Installments {
		if !inst.DueDate.Before(today) {
			return inst, true
		}
	}
	return model.Installment{}, false
}

// UpcomingItem is one row of the upcoming list.
type UpcomingItem struct {
	Plan     model.Plan        `json:"plan"`
	Next     model.Installment `json:"next"`
	DaysLeft int               `json:"daysLeft"`
}

// UpcomingList returns upcoming plans that still have a future installment,
// ordered by the date of their first installment and cut to limit.
// A limit of zero or less keeps every row.
func UpcomingList(plans []model.Plan, today calendar.Date, limit int) []UpcomingItem {
	var items []UpcomingItem
	for _, p := range plans {
		if p.Status != model.StatusUpcoming {
			continue
		}
		next, ok := NextDue(p, today)
		if !ok {
			continue
		}
		items = append(items, UpcomingItem{
			Plan:     p.Clone(),
			Next:     next,
			DaysLeft: today.DaysUntil(next.DueDate),
		})
	}

	// Sorted by the first installment, not the next one.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Plan.Installments[0].DueDate.Before(items[j].Plan.Installments[0].DueDate)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
