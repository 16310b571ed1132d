package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aqsat/internal/config"
	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/tui/components"
	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

const (
	settingsFieldDays = iota
	settingsFieldNotifications
	settingsFieldTheme
	settingsFieldFont
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
}

func newSettingsState() settingsState {
	return settingsState{input: newSettingsInput()}
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "3"
	ti.CharLimit = 4
	ti.Width = 10
	return ti
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return a, nil, true
	case "enter", " ":
		if a.settings.cursor == settingsFieldDays {
			a.settings.editing = true
			a.settings.input.SetValue(strconv.Itoa(a.tracker.Settings().NotificationDays))
			a.settings.input.CursorEnd()
			return a, a.settings.input.Focus(), true
		}
		next := a.tracker.Settings()
		switch a.settings.cursor {
		case settingsFieldNotifications:
			next.NotificationsEnabled = !next.NotificationsEnabled
		case settingsFieldTheme:
			next.Theme = cycle(model.Themes, next.Theme)
		case settingsFieldFont:
			next.Font = cycle(model.Fonts, next.Font)
		}
		return a, a.saveSettings(next), true
	}
	return a, nil, false
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		a.settings.input.Blur()
		days, err := strconv.Atoi(strings.TrimSpace(a.settings.input.Value()))
		if err != nil {
			return a, a.fail(&model.ValidationError{Field: "notificationDays", Reason: "must be a whole number"})
		}
		next := a.tracker.Settings()
		next.NotificationDays = days
		return a, a.saveSettings(next)
	case "esc":
		a.settings.editing = false
		a.settings.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// saveSettings stores next and applies the theme right away.
func (a *App) saveSettings(next model.Settings) tea.Cmd {
	n, err := a.tracker.SaveSettings(a.ctx, next)
	if err != nil {
		return a.fail(err)
	}
	theme.SetActive(next.Theme)
	a.sync()
	return a.show(n)
}

func cycle[T comparable](options []T, cur T) T {
	for i, o := range options {
		if o == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	s := a.tracker.Settings()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	onOff := "off"
	if s.NotificationsEnabled {
		onOff = "on"
	}
	fields := []struct{ label, value string }{
		{"Reminder lead days", strconv.Itoa(s.NotificationDays)},
		{"Notifications", onOff},
		{"Theme", string(s.Theme)},
		{"Font", string(s.Font)},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}
		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			form.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] change  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Calendar:     ") + valueStyle.Render(a.tracker.Dates().Calendar.Name()) + "\n")
	info.WriteString(labelStyle.Render("Currency:     ") + valueStyle.Render(a.amounts.Code()) + "\n")
	info.WriteString(labelStyle.Render("Plans stored: ") + valueStyle.Render(strconv.Itoa(len(a.view.Plans))) + "\n")
	info.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
