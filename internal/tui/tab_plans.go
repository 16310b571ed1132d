package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/pipeline"
	"github.com/theirongolddev/aqsat/internal/tui/components"
	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

// plansState holds the plans tab state.
type plansState struct {
	cursor int
	filter int // index into pipeline.Filters

	searching   bool
	searchInput textinput.Model
	query       string
	fuzzy       bool

	// confirm is the plan awaiting delete confirmation.
	confirm *model.Plan
}

func newPlansState() plansState {
	return plansState{searchInput: newSearchInput()}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name, creditor or description"
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "
	return ti
}

func (s *plansState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *plansState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s plansState) statusFilter() pipeline.StatusFilter {
	return pipeline.Filters[s.filter]
}

// visiblePlans applies the active filter and search to the current view.
func (a App) visiblePlans() []model.Plan {
	return a.tracker.Query(a.plans.statusFilter(), a.plans.query, a.plans.fuzzy)
}

func (a App) selectedPlan() (model.Plan, bool) {
	plans := a.visiblePlans()
	if a.plans.cursor < 0 || a.plans.cursor >= len(plans) {
		return model.Plan{}, false
	}
	return plans[a.plans.cursor], true
}

func (a App) updatePlansKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.visiblePlans())

	switch key {
	case "/":
		a.plans.searching = true
		a.plans.searchInput.SetValue(a.plans.query)
		a.plans.searchInput.CursorEnd()
		return a, a.plans.searchInput.Focus(), true
	case "esc":
		if a.plans.query != "" {
			a.plans.query = ""
			a.plans.cursor = 0
			return a, nil, true
		}
	case "f":
		a.plans.filter = (a.plans.filter + 1) % len(pipeline.Filters)
		a.plans.cursor = 0
		return a, nil, true
	case "z":
		a.plans.fuzzy = !a.plans.fuzzy
		a.plans.clamp(len(a.visiblePlans()))
		return a, nil, true
	case "j", "down":
		a.plans.move(1, n)
		return a, nil, true
	case "k", "up":
		a.plans.move(-1, n)
		return a, nil, true
	case "g", "home":
		a.plans.cursor = 0
		return a, nil, true
	case "G", "end":
		a.plans.cursor = n - 1
		a.plans.clamp(n)
		return a, nil, true
	case "p":
		sel, ok := a.selectedPlan()
		if !ok {
			return a, nil, true
		}
		if sel.IsPaid() {
			return a, a.show(&model.Notification{Message: fmt.Sprintf("Plan %q is already paid", sel.Name), Severity: model.SeverityInfo}), true
		}
		_, note, err := a.tracker.MarkPaid(a.ctx, string(sel.ID))
		a.sync()
		if err != nil {
			return a, a.fail(err), true
		}
		return a, a.show(note), true
	case "d", "x":
		if sel, ok := a.selectedPlan(); ok {
			a.plans.confirm = &sel
		}
		return a, nil, true
	}
	return a, nil, false
}

func (a App) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	target := a.plans.confirm
	a.plans.confirm = nil
	if key != "y" && key != "Y" {
		return a, nil
	}
	_, note, err := a.tracker.DeletePlan(a.ctx, string(target.ID))
	a.sync()
	if err != nil {
		return a, a.fail(err)
	}
	return a, a.show(note)
}

// updatePlansSearch handles key events while in search mode.
func (a App) updatePlansSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.plans.query = strings.TrimSpace(a.plans.searchInput.Value())
		a.plans.searching = false
		a.plans.searchInput.Blur()
		a.plans.cursor = 0
		return a, nil
	case "esc":
		a.plans.searching = false
		a.plans.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.plans.searchInput, cmd = a.plans.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderFilterRow() string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	active := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background).Bold(true).Underline(true)

	parts := make([]string, len(pipeline.Filters))
	for i, f := range pipeline.Filters {
		label := fmt.Sprintf("%s (%d)", f.Label(), len(pipeline.Filter(a.view.Plans, f)))
		if i == a.plans.filter {
			parts[i] = active.Render(label)
		} else {
			parts[i] = pill.Render(label)
		}
	}
	row := " " + strings.Join(parts, pill.Render("  │  "))

	switch {
	case a.plans.searching:
		row += pill.Render("    ") + a.plans.searchInput.View()
	case a.plans.query != "":
		mode := "contains"
		if a.plans.fuzzy {
			mode = "fuzzy"
		}
		row += pill.Render(fmt.Sprintf("    search: %q (%s)", a.plans.query, mode))
	}
	return row
}

func (a App) renderPlansTab(cw, h int) string {
	t := theme.Active
	plans := a.visiblePlans()

	var top string
	if a.plans.confirm != nil {
		warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Background).Bold(true)
		top = warn.Render(fmt.Sprintf(" Delete plan %q? This cannot be undone. [y/N]", a.plans.confirm.Name))
	} else {
		top = a.renderFilterRow()
	}

	if len(plans) == 0 {
		empty := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No plans match")
		return top + "\n\n" + components.ContentCard("Plans", empty, cw)
	}

	listH := h - 2
	if a.isCompactLayout() {
		return top + "\n\n" + a.renderPlanList(plans, cw, listH)
	}

	leftW := max(cw*2/5, 40)
	rightW := cw - leftW
	sel := plans[min(a.plans.cursor, len(plans)-1)]
	left := a.renderPlanList(plans, leftW, listH)
	right := components.ContentCard(fmt.Sprintf("Plan %s", sel.ID.Short()), a.renderPlanDetail(sel, rightW), rightW)
	return top + "\n\n" + components.CardRow([]string{left, right})
}

func (a App) renderPlanList(plans []model.Plan, w, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	visible := max(h-4, 3) // card border + title
	offset := 0
	if a.plans.cursor >= visible {
		offset = a.plans.cursor - visible + 1
	}
	end := min(offset+visible, len(plans))

	amountW := 16
	nameW := max(inner-amountW-4, 8)

	var body strings.Builder
	for i := offset; i < end; i++ {
		p := plans[i]
		dot := lipgloss.NewStyle().Foreground(t.Status(p.Status))
		style := rowStyle
		if i == a.plans.cursor {
			style = selectedStyle
		}
		dot = dot.Background(style.GetBackground())

		line := fmt.Sprintf(" %-*s %*s", nameW, cli.Truncate(p.Name, nameW), amountW, a.amounts.Format(p.TotalAmount))
		body.WriteString(dot.Render("●"))
		body.WriteString(style.Render(lipgloss.PlaceHorizontal(inner-1, lipgloss.Left, line)))
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	title := fmt.Sprintf("%s plans [%d]", a.plans.statusFilter().Label(), len(plans))
	return components.ContentCard(title, body.String(), w)
}

func (a App) renderPlanDetail(p model.Plan, w int) string {
	t := theme.Active
	dates := a.tracker.Dates()
	today := a.view.Today

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	statusStyle := lipgloss.NewStyle().Foreground(t.Status(p.Status)).Background(t.Surface).Bold(true)

	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render(p.Name))
	b.WriteString(labelStyle.Render("  "))
	b.WriteString(statusStyle.Render(p.Status.Label()))
	b.WriteString("\n\n")

	creditor := p.Creditor
	if creditor == model.UnspecifiedCreditor {
		creditor = "—"
	}
	field("Creditor", creditor)
	field("Total", a.amounts.Format(p.TotalAmount))
	field("Created", dates.Format(calendar.FromTime(p.CreatedAt.Local()), calendar.PatternLong))
	if p.Description != "" {
		field("Notes", cli.Truncate(p.Description, components.CardInnerWidth(w)-12))
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Installments"))
	b.WriteString("\n")
	for i, inst := range p.Installments {
		days := today.DaysUntil(inst.DueDate)
		when := cli.FormatDaysLeft(days)
		whenStyle := labelStyle
		switch {
		case p.IsPaid():
			when = "paid"
			whenStyle = whenStyle.Foreground(t.Green)
		case days < 0:
			whenStyle = whenStyle.Foreground(t.Red)
		case days <= a.tracker.Settings().NotificationDays:
			whenStyle = whenStyle.Foreground(t.Orange)
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%3d. ", i+1)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%-12s %16s  ", dates.Format(inst.DueDate, calendar.PatternISO), a.amounts.Format(inst.Amount))))
		b.WriteString(whenStyle.Render(when))
		if i < len(p.Installments)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
