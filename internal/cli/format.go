// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/theirongolddev/aqsat/internal/config"
)

// AmountFormatter prints whole-unit amounts in the configured currency.
type AmountFormatter struct {
	code string
	f    *money.Formatter
}

// NewAmountFormatter builds a formatter from the [currency] config section.
// Unknown codes fall back to printing the code after the number.
func NewAmountFormatter(cfg config.CurrencyConfig) AmountFormatter {
	code := strings.ToUpper(strings.TrimSpace(cfg.Code))
	if code == "" {
		code = "IRR"
	}

	grapheme, template, decimal, thousand := code, "1 $", ".", ","
	if cur := money.GetCurrency(code); cur != nil {
		grapheme, template = cur.Grapheme, cur.Template
		if cur.Decimal != "" {
			decimal = cur.Decimal
		}
		if cur.Thousand != "" {
			thousand = cur.Thousand
		}
	}
	if cfg.Label != "" {
		grapheme, template = cfg.Label, "1 $"
	}

	fraction := cfg.Fraction
	if fraction < 0 {
		fraction = 0
	}
	return AmountFormatter{
		code: code,
		f:    money.NewFormatter(fraction, decimal, thousand, grapheme, template),
	}
}

// Code returns the ISO currency code.
func (a AmountFormatter) Code() string { return a.code }

// Format renders amount with separators and the currency sign.
func (a AmountFormatter) Format(amount int64) string {
	if a.f == nil {
		return FormatNumber(amount)
	}
	return a.f.Format(amount)
}

// Money wraps amount as a go-money value in the formatter's currency.
func (a AmountFormatter) Money(amount int64) *money.Money {
	return money.New(amount, a.code)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// ParseAmount reads a whole-unit amount, accepting thousands separators
// and Persian digits.
func ParseAmount(s string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r == ',' || r == '٬' || r == '_' || r == ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

// FormatDaysLeft describes the distance to a due date.
func FormatDaysLeft(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days < 0:
		return fmt.Sprintf("%dd overdue", -days)
	}
	return fmt.Sprintf("in %d days", days)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
