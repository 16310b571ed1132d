package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	assert.Equal(t, []int{34, 33, 33}, LayoutRow(100, 3))
	assert.Nil(t, LayoutRow(100, 0))
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive(model.ThemeDark)

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)
	require.Less(t, lipgloss.Height(short), lipgloss.Height(tall))

	joined := CardRow([]string{tall, short})
	lines := strings.Split(joined, "\n")
	assert.Len(t, lines, lipgloss.Height(tall))
	for i, line := range lines {
		assert.Equal(t, 44, lipgloss.Width(line), "line %d", i)
		assert.Contains(t, line, "\x1b[", "line %d has no styling", i)
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Outstanding", Value: "1,000"},
		{Label: "Overdue", Value: "2", Color: theme.Active.Red},
		{Label: "Paid", Value: "1", Hint: "of 3"},
	}, 90)
	for _, line := range strings.Split(row, "\n") {
		assert.Equal(t, 90, lipgloss.Width(line))
	}
	assert.Contains(t, row, "Outstanding")
	assert.Empty(t, MetricCardRow(nil, 90))
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(1, 4, 8)
	assert.Contains(t, bar, "1/4")
	assert.Equal(t, 2, strings.Count(bar, "█"))
	assert.Contains(t, ProgressBar(0, 0, 8), "0/0")
}

func TestRenderNotice(t *testing.T) {
	assert.Empty(t, RenderNotice(nil, 80))
	out := RenderNotice(&model.Notification{Message: "Plan \"A\" deleted", Severity: model.SeverityWarning}, 80)
	assert.Contains(t, out, "!")
	assert.Contains(t, out, "deleted")
	assert.Equal(t, 80, lipgloss.Width(out))
}

func TestTabBar(t *testing.T) {
	assert.Equal(t, 1, TabIdxByKey('l'))
	assert.Equal(t, -1, TabIdxByKey('z'))

	bar := RenderTabBar(0, 100, "today")
	assert.Equal(t, 100, lipgloss.Width(bar))
	assert.Contains(t, bar, "Overview")
	assert.Contains(t, bar, "today")
}

func TestStatusBarFillsWidth(t *testing.T) {
	bar := RenderStatusBar(60, "[?]help  [q]uit", "2 need attention")
	assert.Equal(t, 60, lipgloss.Width(bar))
}
