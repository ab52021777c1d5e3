package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Round rounds an amount to centavos (2 fraction digits) using half-up
// rounding. decimal.Round rounds half away from zero, which is identical to
// half-up for the non-negative amounts handled here and keeps the expected
// behavior for negative adjustments (-0.005 → -0.01).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns pct% of base, rounded to centavos.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(pct).Div(decimal.NewFromInt(100)))
}

// FormatMXN renders an amount as a Mexican peso string, e.g. "$1,234,567.89 MXN".
func FormatMXN(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%s MXN", sign, b.String(), parts[1])
}

// AddMonths advances a date by n calendar months, clamping to the last day of
// the target month so a schedule anchored on the 29th-31st never slips into
// the following month (Jan 31 + 1 month = Feb 28/29, not Mar 2/3).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	target := first.AddDate(0, n, 0)

	lastDay := daysIn(target.Month(), target.Year())
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SameOrAfter reports whether a falls on the same calendar day as b or later.
func SameOrAfter(a, b time.Time) bool {
	return !DateOnly(a).Before(DateOnly(b))
}

// Before reports whether a falls on a calendar day strictly before b.
func Before(a, b time.Time) bool {
	return DateOnly(a).Before(DateOnly(b))
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
