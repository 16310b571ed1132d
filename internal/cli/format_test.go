package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/config"
	"github.com/theirongolddev/aqsat/internal/model"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%d)", tt.in)
	}
}

func TestAmountFormatter(t *testing.T) {
	rial := NewAmountFormatter(config.DefaultConfig().Currency)
	assert.Equal(t, "IRR", rial.Code())
	assert.Contains(t, rial.Format(1_000_000), "1,000,000")
	assert.NotContains(t, rial.Format(1_000_000), ".00")

	toman := NewAmountFormatter(config.CurrencyConfig{Code: "IRR", Label: "Toman"})
	assert.Equal(t, "333,334 Toman", toman.Format(333_334))

	usd := NewAmountFormatter(config.CurrencyConfig{Code: "usd", Fraction: 2})
	assert.Equal(t, "$1,234.56", usd.Format(123_456))
	assert.Equal(t, int64(123_456), usd.Money(123_456).Amount())

	unknown := NewAmountFormatter(config.CurrencyConfig{Code: "XYZ"})
	assert.Equal(t, "1,500 XYZ", unknown.Format(1500))
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]int64{
		"1000000":   1_000_000,
		"1,000,000": 1_000_000,
		"۱۲۰۰۰۰۰":   1_200_000,
		" 42 ":      42,
	} {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "abc", "1.5"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatDaysLeft(t *testing.T) {
	assert.Equal(t, "today", FormatDaysLeft(0))
	assert.Equal(t, "tomorrow", FormatDaysLeft(1))
	assert.Equal(t, "in 12 days", FormatDaysLeft(12))
	assert.Equal(t, "3d overdue", FormatDaysLeft(-3))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "long…", Truncate("longer text", 5))
	assert.Equal(t, "قسط…", Truncate("قسط خانه", 4))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:      "Plans",
		Headers:    []string{"Name", "Amount"},
		Rows:       [][]string{{"Laptop", "1,000"}, {"---"}, {"قسط", "10"}},
		RightAlign: []int{1},
	})
	assert.Contains(t, out, "Plans")
	assert.Contains(t, out, "Laptop")
	assert.Contains(t, out, "   10")
	assert.Equal(t, 8, strings.Count(out, "\n"))
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderNotification(t *testing.T) {
	assert.Empty(t, RenderNotification(nil))
	out := RenderNotification(&model.Notification{Message: "Plan deleted", Severity: model.SeverityWarning})
	assert.Contains(t, out, "! Plan deleted")
	assert.Equal(t, ColorRed, SeverityColor(model.SeverityError))
	assert.Equal(t, ColorBlue, SeverityColor(model.SeverityInfo))
	assert.Contains(t, RenderStatus(model.StatusPast), "Overdue")
}
