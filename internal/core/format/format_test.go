package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// IsDateValid Tests
// =============================================================================

func TestIsDateValid_LeapDay(t *testing.T) {
	assert.True(t, IsDateValid("2016-02-29"))
}

func TestIsDateValid_OverflowedDay(t *testing.T) {
	assert.False(t, IsDateValid("2019-04-31"))
}

func TestIsDateValid_WrongSeparator(t *testing.T) {
	assert.False(t, IsDateValid("10.10.2010"))
}

func TestIsDateValid_TableDriven(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain date", "2010-10-10", true},
		{"new year", "2024-01-01", true},
		{"december 31st", "2023-12-31", true},
		{"non leap february 29th", "2019-02-29", false},
		{"month overflow", "2020-13-01", false},
		{"day zero", "2020-05-00", false},
		{"missing padding", "2020-5-9", false},
		{"reversed", "31-12-2020", false},
		{"empty", "", false},
		{"trailing garbage", "2020-05-09x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDateValid(tt.input))
		})
	}
}

// =============================================================================
// PluralForm Tests
// =============================================================================

func TestPluralForm_Minutes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "минута"},
		{2, "минуты"},
		{3, "минуты"},
		{4, "минуты"},
		{5, "минут"},
		{10, "минут"},
		{11, "минут"},
		{14, "минут"},
		{20, "минут"},
		{21, "минута"},
		{22, "минуты"},
		{25, "минут"},
		{100, "минут"},
		{102, "минуты"},
		{111, "минут"},
		{121, "минута"},
	}

	for _, tt := range tests {
		got := PluralForm(tt.n, "минута", "минуты", "минут")
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestPluralForm_Zero(t *testing.T) {
	assert.Equal(t, "минут", PluralForm(0, "минута", "минуты", "минут"))
}

// =============================================================================
// RelativeTime Tests
// =============================================================================

func TestRelativeTime_Seconds(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	got := RelativeTime(now.Add(-30*time.Second), now)
	assert.Equal(t, "30 секунд назад", got)
}

func TestRelativeTime_SingleMinute(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	got := RelativeTime(now.Add(-time.Minute), now)
	assert.Equal(t, "1 минута назад", got)
}

func TestRelativeTime_Hours(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	got := RelativeTime(now.Add(-2*time.Hour), now)
	assert.Equal(t, "2 часа назад", got)
}

func TestRelativeTime_OverADay(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	got := RelativeTime(now.Add(-25*time.Hour), now)
	assert.Equal(t, "09.05.2024 11:00", got)
}

// =============================================================================
// RemainingTime Tests
// =============================================================================

func TestRemainingTime_Countdown(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Hour + 30*time.Minute + 5*time.Second)

	h, m, s := RemainingTime(end, now)
	assert.Equal(t, "01", h)
	assert.Equal(t, "30", m)
	assert.Equal(t, "5", s)
}

func TestRemainingTime_Past(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	h, m, s := RemainingTime(now.Add(-time.Hour), now)
	assert.Equal(t, "00", h)
	assert.Equal(t, "00", m)
	assert.Equal(t, "0", s)
}

func TestRemainingTime_OverTwoDays(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	h, _, _ := RemainingTime(now.Add(50*time.Hour), now)
	assert.Equal(t, "50", h)
}

// =============================================================================
// Currency Tests
// =============================================================================

func TestCurrency_TableDriven(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"round thousand", 1000, "1 000 ₽"},
		{"ceiling applied before grouping", 999.2, "1 000 ₽"},
		{"no grouping needed", 100, "100 ₽"},
		{"millions", 1234567, "1 234 567 ₽"},
		{"zero", 0, "0 ₽"},
		{"fraction rounds up", 0.01, "1 ₽"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.input))
		})
	}
}

// =============================================================================
// EscapeHTML Tests
// =============================================================================

func TestEscapeHTML_Tag(t *testing.T) {
	got := EscapeHTML(`<a href="x">`)
	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;", got)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
	assert.NotContains(t, got, `"`)
}

func TestEscapeHTML_AmpersandFirst(t *testing.T) {
	assert.Equal(t, "&amp;lt;", EscapeHTML("&lt;"))
}

func TestEscapeHTML_Quotes(t *testing.T) {
	assert.Equal(t, "&#39;", EscapeHTML("'"))
}
