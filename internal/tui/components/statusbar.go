package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, right
// text (badge, search state) on the right.
func RenderStatusBar(width int, hints, right string) string {
	t := theme.Active
	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	if right != "" {
		right += " "
	}
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return style.Render(left + strings.Repeat(" ", padding) + right)
}

var severityIcons = map[model.Severity]string{
	model.SeverityInfo:    "i",
	model.SeveritySuccess: "✓",
	model.SeverityWarning: "!",
	model.SeverityError:   "✗",
}

// RenderNotice renders a one-line notification bar across width.
// A nil notification renders nothing.
func RenderNotice(n *model.Notification, width int) string {
	if n == nil {
		return ""
	}
	t := theme.Active
	color := t.Severity(n.Severity)

	icon := severityIcons[n.Severity]
	if icon == "" {
		icon = "i"
	}
	iconStyle := lipgloss.NewStyle().Foreground(t.Background).Background(color).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Width(width - 3)

	return iconStyle.Render(" "+icon+" ") + msgStyle.Render(" "+n.Message)
}
