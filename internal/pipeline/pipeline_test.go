package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
)

var today = calendar.MustParseISO("2024-06-10")

func plan(id string, status model.Status, dates ...string) model.Plan {
	p := model.Plan{ID: model.PlanID(id), Name: id, Creditor: "Bank", Status: status}
	for _, d := range dates {
		p.Installments = append(p.Installments, model.Installment{DueDate: calendar.MustParseISO(d), Amount: 100})
		p.TotalAmount += 100
	}
	return p
}

func defaults() model.Settings { return model.DefaultSettings() }

func TestYesterdayFlipsToPast(t *testing.T) {
	plans := []model.Plan{plan("a", model.StatusUpcoming, "2024-06-09")}

	report := UpdateStatuses(plans, defaults(), today)
	assert.Equal(t, model.StatusPast, plans[0].Status)
	assert.Equal(t, []model.PlanID{"a"}, report.Changed)
	assert.Equal(t, 1, report.Overdue)
}

func TestPaidStaysPaid(t *testing.T) {
	plans := []model.Plan{plan("a", model.StatusPaid, "2024-06-09")}

	for i := 0; i < 3; i++ {
		report := UpdateStatuses(plans, defaults(), today)
		assert.Empty(t, report.Changed)
		assert.Zero(t, report.Overdue)
		assert.Nil(t, report.Notification)
	}
	assert.Equal(t, model.StatusPaid, plans[0].Status)
}

func TestPastRevertsWhenDatesMove(t *testing.T) {
	plans := []model.Plan{plan("a", model.StatusPast, "2024-06-20")}
	UpdateStatuses(plans, defaults(), today)
	assert.Equal(t, model.StatusUpcoming, plans[0].Status)
}

func TestUpdateStatusesIsIdempotent(t *testing.T) {
	plans := []model.Plan{
		plan("a", model.StatusUpcoming, "2024-06-01", "2024-07-01"),
		plan("b", model.StatusUpcoming, "2024-06-12"),
		plan("c", model.StatusPaid, "2024-05-01"),
	}

	first := UpdateStatuses(plans, defaults(), today)
	snapshot := append([]model.Plan(nil), plans...)
	second := UpdateStatuses(plans, defaults(), today)

	assert.Len(t, first.Changed, 1)
	assert.Empty(t, second.Changed)
	assert.Equal(t, snapshot, plans)
	assert.Equal(t, first.Notification, second.Notification)
}

func TestNotificationPolicy(t *testing.T) {
	tests := []struct {
		name     string
		plans    []model.Plan
		settings func(*model.Settings)
		want     model.Severity
		soon     int
		overdue  int
	}{
		{
			name:  "due in two days is info",
			plans: []model.Plan{plan("a", model.StatusUpcoming, "2024-06-12")},
			want:  model.SeverityInfo,
			soon:  1,
		},
		{
			name:  "due today counts as soon",
			plans: []model.Plan{plan("a", model.StatusUpcoming, "2024-06-10")},
			want:  model.SeverityInfo,
			soon:  1,
		},
		{
			name: "overdue anywhere wins",
			plans: []model.Plan{
				plan("a", model.StatusUpcoming, "2024-06-12"),
				plan("b", model.StatusUpcoming, "2024-01-01"),
			},
			want:    model.SeverityError,
			soon:    1,
			overdue: 1,
		},
		{
			name:  "outside window is silent",
			plans: []model.Plan{plan("a", model.StatusUpcoming, "2024-06-14")},
		},
		{
			name:     "zero lead days only today",
			plans:    []model.Plan{plan("a", model.StatusUpcoming, "2024-06-10", "2024-06-11")},
			settings: func(s *model.Settings) { s.NotificationDays = 0 },
			want:     model.SeverityInfo,
			soon:     1,
		},
		{
			name:     "disabled still counts",
			plans:    []model.Plan{plan("a", model.StatusUpcoming, "2024-01-01")},
			settings: func(s *model.Settings) { s.NotificationsEnabled = false },
			overdue:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaults()
			if tt.settings != nil {
				tt.settings(&s)
			}
			report := UpdateStatuses(tt.plans, s, today)
			assert.Equal(t, tt.soon, report.DueSoon)
			assert.Equal(t, tt.overdue, report.Overdue)
			assert.Equal(t, tt.soon+tt.overdue, report.NotificationCount())
			if tt.want == "" {
				assert.Nil(t, report.Notification)
				return
			}
			require.NotNil(t, report.Notification)
			assert.Equal(t, tt.want, report.Notification.Severity)
		})
	}
}

func TestNotificationMessages(t *testing.T) {
	n := reminder(2, 0, 3)
	assert.Equal(t, "You have 2 overdue installments. Please pay as soon as possible.", n.Message)
	n = reminder(0, 1, 1)
	assert.Equal(t, "You have 1 installment due in the next 1 day.", n.Message)
	assert.Nil(t, reminder(0, 0, 3))
}

func TestSummarize(t *testing.T) {
	plans := []model.Plan{
		// Status not yet flipped still counts its past installment as overdue.
		plan("a", model.StatusUpcoming, "2024-06-01", "2024-07-01"),
		plan("b", model.StatusPast, "2024-05-01"),
		plan("c", model.StatusPaid, "2024-05-01", "2024-08-01"),
		plan("d", model.StatusPaid, "2024-09-01"),
	}

	got := Summarize(plans, today)
	assert.Equal(t, Summary{TotalOutstanding: 300, UpcomingCount: 1, OverdueCount: 2, PaidCount: 2}, got)
}

func TestNextDue(t *testing.T) {
	p := plan("a", model.StatusUpcoming, "2024-06-01", "2024-06-10", "2024-07-10")
	next, ok := NextDue(p, today)
	require.True(t, ok)
	assert.Equal(t, "2024-06-10", next.DueDate.String())

	_, ok = NextDue(plan("b", model.StatusPast, "2024-06-01"), today)
	assert.False(t, ok)
}

func TestUpcomingList(t *testing.T) {
	plans := []model.Plan{
		plan("late-start", model.StatusUpcoming, "2024-06-05", "2024-06-25"),
		plan("early-start", model.StatusUpcoming, "2024-05-01", "2024-08-01"),
		plan("past", model.StatusPast, "2024-06-20"),
		plan("paid", model.StatusPaid, "2024-06-20"),
		plan("finished", model.StatusUpcoming, "2024-06-01"),
		plan("soon", model.StatusUpcoming, "2024-06-11"),
	}

	items := UpcomingList(plans, today, 5)
	require.Len(t, items, 3)
	assert.Equal(t, model.PlanID("early-start"), items[0].Plan.ID)
	assert.Equal(t, model.PlanID("late-start"), items[1].Plan.ID)
	assert.Equal(t, model.PlanID("soon"), items[2].Plan.ID)
	assert.Equal(t, 52, items[0].DaysLeft)
	assert.Equal(t, 15, items[1].DaysLeft)
	assert.Equal(t, 1, items[2].DaysLeft)

	assert.Len(t, UpcomingList(plans, today, 2), 2)
	assert.Len(t, UpcomingList(plans, today, 0), 3)
}

func TestUpcomingListTruncatesAtFive(t *testing.T) {
	var plans []model.Plan
	for _, d := range []string{"2024-06-17", "2024-06-16", "2024-06-15", "2024-06-14", "2024-06-13", "2024-06-12", "2024-06-11"} {
		plans = append(plans, plan(d, model.StatusUpcoming, d))
	}
	items := UpcomingList(plans, today, DefaultUpcomingLimit)
	require.Len(t, items, 5)
	assert.Equal(t, model.PlanID("2024-06-11"), items[0].Plan.ID)
	assert.Equal(t, model.PlanID("2024-06-15"), items[4].Plan.ID)
}

func TestFilterAndSearch(t *testing.T) {
	a := plan("a", model.StatusUpcoming, "2024-07-01")
	a.Name, a.Creditor, a.Description = "Laptop", "Digikala", "work machine"
	b := plan("b", model.StatusPaid, "2024-07-01")
	b.Name, b.Creditor = "Car loan", "Melli Bank"
	c := plan("c", model.StatusPast, "2024-01-01")
	c.Name, c.Creditor = "Phone", "Store"
	plans := []model.Plan{a, b, c}

	assert.Len(t, Filter(plans, FilterAll), 3)
	paid := Filter(plans, StatusFilter(model.StatusPaid))
	require.Len(t, paid, 1)
	assert.Equal(t, "Car loan", paid[0].Name)

	assert.Len(t, Search(plans, "", false), 3)
	assert.Equal(t, []model.Plan{b}, Search(plans, "BANK", false))
	assert.Equal(t, []model.Plan{a}, Search(plans, "machine", false))
	assert.Empty(t, Search(plans, "lptp", false))
	assert.Equal(t, []model.Plan{a}, Search(plans, "lptp", true))
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]StatusFilter{
		"":        FilterAll,
		"ALL":     FilterAll,
		"paid":    StatusFilter(model.StatusPaid),
		"overdue": StatusFilter(model.StatusPast),
	} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFilter("later")
	assert.Error(t, err)
}

func TestRecomputeLeavesInputUntouched(t *testing.T) {
	plans := []model.Plan{
		plan("a", model.StatusUpcoming, "2024-06-01"),
		plan("b", model.StatusUpcoming, "2024-06-11"),
	}

	view := Recompute(plans, defaults(), today, DefaultUpcomingLimit)
	assert.Equal(t, model.StatusUpcoming, plans[0].Status)
	assert.Equal(t, model.StatusPast, view.Plans[0].Status)
	assert.Equal(t, today, view.Today)
	assert.Equal(t, Summary{TotalOutstanding: 200, UpcomingCount: 1, OverdueCount: 1}, view.Summary)
	require.Len(t, view.Upcoming, 1)
	assert.Equal(t, model.PlanID("b"), view.Upcoming[0].Plan.ID)
	require.NotNil(t, view.Notification())
	assert.Equal(t, model.SeverityError, view.Notification().Severity)
}
