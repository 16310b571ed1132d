package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/tui/components"
	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	sum := a.view.Summary
	var b strings.Builder

	// Row 1: stat cards
	metrics := []components.Metric{
		{Label: "Outstanding", Value: a.amounts.Format(sum.TotalOutstanding), Hint: "unpaid installments"},
		{Label: "Upcoming", Value: cli.FormatNumber(int64(sum.UpcomingCount)), Hint: "installments", Color: t.Yellow},
		{Label: "Overdue", Value: cli.FormatNumber(int64(sum.OverdueCount)), Hint: "installments", Color: t.Red},
		{Label: "Paid", Value: cli.FormatNumber(int64(sum.PaidCount)), Hint: fmt.Sprintf("of %d plans", len(a.view.Plans)), Color: t.Green},
	}
	if sum.OverdueCount == 0 {
		metrics[2].Color = ""
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: upcoming payments beside progress and reminders
	upcoming := a.renderUpcoming
	progress := a.renderProgress
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Upcoming Payments", upcoming(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Progress", progress(cw), cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 5)
	leftW := halves[0] + halves[1] + halves[2]
	rightW := cw - leftW
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Upcoming Payments", upcoming(leftW), leftW),
		components.ContentCard("Progress", progress(rightW), rightW),
	}))
	return b.String()
}

func (a App) renderUpcoming(w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	dates := a.tracker.Dates()

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	if len(a.view.Upcoming) == 0 {
		return mutedStyle.Render("No upcoming payments")
	}

	dateW, amountW, whenW := 14, 16, 12
	nameW := max(inner-dateW-amountW-whenW-3, 8)

	lines := make([]string, 0, len(a.view.Upcoming))
	for _, item := range a.view.Upcoming {
		whenStyle := mutedStyle
		if item.DaysLeft <= a.tracker.Settings().NotificationDays {
			whenStyle = whenStyle.Foreground(t.Orange)
		}
		lines = append(lines,
			nameStyle.Render(fmt.Sprintf("%-*s ", nameW, cli.Truncate(item.Plan.Name, nameW)))+
				mutedStyle.Render(fmt.Sprintf("%-*s ", dateW, dates.Format(item.Next.DueDate, calendar.PatternISO)))+
				amountStyle.Render(fmt.Sprintf("%*s ", amountW, a.amounts.Format(item.Next.Amount)))+
				whenStyle.Render(fmt.Sprintf("%-*s", whenW, cli.FormatDaysLeft(item.DaysLeft))))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderProgress(w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	settings := a.tracker.Settings()
	status := a.view.Status

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(labelStyle.Render("Plans paid"))
	b.WriteString("\n")
	b.WriteString(components.ProgressBar(a.view.Summary.PaidCount, len(a.view.Plans), max(inner-10, 5)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("%-22s", "Overdue installments")))
	b.WriteString(valueStyle.Render(cli.FormatNumber(int64(status.Overdue))))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-22s", fmt.Sprintf("Due in %d days", settings.NotificationDays))))
	b.WriteString(valueStyle.Render(cli.FormatNumber(int64(status.DueSoon))))
	b.WriteString("\n")
	reminders := "on"
	if !settings.NotificationsEnabled {
		reminders = "off"
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-22s", "Reminders")))
	b.WriteString(valueStyle.Render(reminders))
	return b.String()
}
