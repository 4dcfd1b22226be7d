// Package format provides display formatting helpers for lot pages:
// calendar-strict date checks, Slavic pluralization, relative and
// remaining time, currency and HTML escaping. All functions are pure;
// callers pass the current time explicitly.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/polarbid/polarbid/internal/i18n"
)

// DateLayout is the only accepted lot end-date format.
const DateLayout = "2006-01-02"

// =============================================================================
// Dates
// =============================================================================

// IsDateValid reports whether s is a real calendar date in YYYY-MM-DD
// form. Parsing is calendar-aware: "2016-02-29" is valid, "2019-04-31"
// and "10.10.2010" are not.
func IsDateValid(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// =============================================================================
// Pluralization
// =============================================================================

// PluralForm picks the Russian plural form of a noun for count n.
// n%100 in [11,20] takes many; otherwise n%10 decides: 1 takes one,
// 2..4 take few, everything else takes many.
func PluralForm(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	if mod100 := n % 100; mod100 >= 11 && mod100 <= 20 {
		return many
	}
	switch mod10 := n % 10; {
	case mod10 == 1:
		return one
	case mod10 >= 2 && mod10 <= 4:
		return few
	default:
		return many
	}
}

// plural resolves the three catalog forms of a time unit for count n.
func plural(n int, unit string) string {
	return PluralForm(n,
		i18n.T("time."+unit+".one"),
		i18n.T("time."+unit+".few"),
		i18n.T("time."+unit+".many"),
	)
}

// =============================================================================
// Relative and remaining time
// =============================================================================

// RelativeTime renders how long ago t was relative to now: "N единиц
// назад" while the elapsed time is under 24 hours, an absolute
// date-time afterwards.
func RelativeTime(t, now time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= 24*time.Hour {
		return t.Format("02.01.2006 15:04")
	}

	var n int
	var unit string
	switch {
	case elapsed < time.Minute:
		n, unit = int(elapsed.Seconds()), "second"
	case elapsed < time.Hour:
		n, unit = int(elapsed.Minutes()), "minute"
	default:
		n, unit = int(elapsed.Hours()), "hour"
	}
	return fmt.Sprintf("%d %s %s", n, plural(n, unit), i18n.T("time.ago"))
}

// RemainingTime decomposes the time left until end into zero-padded
// hour, minute and second strings for the lot countdown. A deadline in
// the past yields "00", "00", "0".
func RemainingTime(end, now time.Time) (hours, minutes, seconds string) {
	left := end.Sub(now)
	if left < 0 {
		left = 0
	}
	h := int(left.Hours())
	m := int(left.Minutes()) % 60
	s := int(left.Seconds()) % 60
	return fmt.Sprintf("%02d", h), fmt.Sprintf("%02d", m), fmt.Sprintf("%01d", s)
}

// =============================================================================
// Currency
// =============================================================================

// Currency formats a price in rubles: rounded up to a whole number,
// thousands separated by a space, "₽" appended. Currency(999.2) is
// "1 000 ₽".
func Currency(n float64) string {
	v := int64(math.Ceil(n))

	neg := v < 0
	if neg {
		v = -v
	}

	digits := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " ₽"
}

// =============================================================================
// Escaping
// =============================================================================

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces the HTML-special and quote characters with their
// entity equivalents. Used when user input is spliced into markup
// outside of template auto-escaping.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
