package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

// ProgressBar renders done out of total as a bar followed by "done/total".
// A zero total renders an empty bar.
func ProgressBar(done, total, width int) string {
	t := theme.Active
	if width < 1 {
		width = 1
	}

	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	filled = max(0, min(filled, width))

	barColor := t.Accent
	if total > 0 && done >= total {
		barColor = t.Green
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	b.WriteString(spaceStyle.Render(" "))
	b.WriteString(countStyle.Render(fmt.Sprintf("%d/%d", done, total)))
	return b.String()
}
