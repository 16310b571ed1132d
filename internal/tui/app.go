// Package tui provides the interactive bubbletea dashboard for aqsat.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/pipeline"
	"github.com/theirongolddev/aqsat/internal/tracker"
	"github.com/theirongolddev/aqsat/internal/tui/components"
	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

const (
	tabOverview = iota
	tabPlans
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	// dayCheckInterval is how often the dashboard checks for a date change.
	dayCheckInterval = time.Minute
)

// App is the root bubbletea model.
type App struct {
	ctx     context.Context
	tracker *tracker.Tracker
	amounts cli.AmountFormatter
	view    pipeline.View

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	plans    plansState
	settings settingsState

	// notice is the visible notification; noticeSeq tells a stale dismiss
	// timer from the current one.
	notice    *model.Notification
	noticeSeq int
}

// dismissMsg clears the notification it was scheduled for.
type dismissMsg struct{ seq int }

// dayTickMsg triggers the periodic date check.
type dayTickMsg struct{}

// NewApp builds the dashboard over an opened tracker. The startup reminder,
// if any, is shown first.
func NewApp(ctx context.Context, t *tracker.Tracker, amounts cli.AmountFormatter) App {
	a := App{
		ctx:      ctx,
		tracker:  t,
		amounts:  amounts,
		view:     t.View(),
		plans:    newPlansState(),
		settings: newSettingsState(),
	}
	theme.SetActive(t.Settings().Theme)
	if n := a.view.Notification(); n != nil {
		a.notice = n
		a.noticeSeq = 1
	}
	return a
}

// Init starts the date check and the dismiss timer for the startup notice.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{dayTickCmd()}
	if a.notice != nil {
		cmds = append(cmds, dismissAfter(a.noticeSeq))
	}
	return tea.Batch(cmds...)
}

func dayTickCmd() tea.Cmd {
	return tea.Tick(dayCheckInterval, func(time.Time) tea.Msg { return dayTickMsg{} })
}

func dismissAfter(seq int) tea.Cmd {
	return tea.Tick(model.NotificationTTL, func(time.Time) tea.Msg { return dismissMsg{seq: seq} })
}

// show replaces the visible notification and schedules its dismissal.
func (a *App) show(n *model.Notification) tea.Cmd {
	if n == nil {
		return nil
	}
	a.noticeSeq++
	a.notice = n
	return dismissAfter(a.noticeSeq)
}

// fail surfaces err as an error notification. Errors are shown even when
// reminders are turned off.
func (a *App) fail(err error) tea.Cmd {
	return a.show(&model.Notification{Message: err.Error(), Severity: model.SeverityError})
}

// sync pulls the tracker's latest view and keeps the list cursor in range.
func (a *App) sync() {
	a.view = a.tracker.View()
	a.plans.clamp(len(a.visiblePlans()))
}

// reload re-reads storage and recomputes, showing the cycle's reminder.
func (a *App) reload() tea.Cmd {
	a.tracker.Reload(a.ctx)
	a.sync()
	return a.show(a.view.Notification())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case dismissMsg:
		if msg.seq == a.noticeSeq {
			a.notice = nil
		}
		return a, nil

	case dayTickMsg:
		var cmd tea.Cmd
		if !a.tracker.Dates().Today().Equal(a.view.Today) {
			cmd = a.reload()
		}
		return a, tea.Batch(cmd, dayTickCmd())

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	// Forward blink and other input messages to an active text input.
	var cmd tea.Cmd
	switch {
	case a.plans.searching:
		a.plans.searchInput, cmd = a.plans.searchInput.Update(msg)
	case a.settings.editing:
		a.settings.input, cmd = a.settings.input.Update(msg)
	}
	return a, cmd
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabPlans {
			a.plans.move(-1, len(a.visiblePlans()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabPlans {
			a.plans.move(1, len(a.visiblePlans()))
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 && msg.Action == tea.MouseActionPress {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Modal states intercept all keys.
	switch {
	case a.settings.editing:
		return a.updateSettingsInput(msg)
	case a.plans.searching:
		return a.updatePlansSearch(msg)
	case a.plans.confirm != nil:
		return a.updateDeleteConfirm(key)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		return a, a.reload()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	switch a.activeTab {
	case tabPlans:
		if m, cmd, handled := a.updatePlansKey(key); handled {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, handled := a.updateSettingsKey(key); handled {
			return m, cmd
		}
	}

	if key == "esc" {
		a.notice = nil
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  aqsat needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o l s", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Navigate lists"},
			{"g G", "First / Last plan"},
		}},
		{"Plans", []struct{ key, desc string }{
			{"/", "Search plans"},
			{"f", "Cycle status filter"},
			{"z", "Toggle fuzzy search"},
			{"p", "Mark plan paid"},
			{"d", "Delete plan"},
		}},
		{"General", []struct{ key, desc string }{
			{"Enter", "Edit setting"},
			{"Esc", "Dismiss / Cancel"},
			{"r", "Reload data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	today := a.tracker.Dates().Format(a.view.Today, calendar.PatternFull)
	header := components.RenderTabBar(a.activeTab, w, today)
	if a.notice != nil {
		header += "\n" + components.RenderNotice(a.notice, w)
	}
	statusBar := components.RenderStatusBar(w, a.statusHints(), a.badge())

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabPlans:
		content = a.renderPlansTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusHints() string {
	switch {
	case a.plans.confirm != nil:
		return "[y]es delete  [n]o"
	case a.plans.searching:
		return "[enter]apply  [esc]cancel"
	case a.settings.editing:
		return "[enter]save  [esc]cancel"
	case a.activeTab == tabPlans:
		return "[/]search  [f]ilter  [p]aid  [d]elete  [?]help  [q]uit"
	case a.activeTab == tabSettings:
		return "[j/k]move  [enter]change  [?]help  [q]uit"
	}
	return "[r]eload  [?]help  [q]uit"
}

// badge mirrors the header bell: everything that needs attention.
func (a App) badge() string {
	if !a.tracker.Settings().NotificationsEnabled {
		return ""
	}
	n := a.view.Status.NotificationCount()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("● %d need attention", n)
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
