package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndEndOfDay(t *testing.T) {
	moment := time.Date(2026, 3, 15, 14, 30, 45, 123, time.UTC)

	start := StartOfDay(moment)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), start)

	end := EndOfDay(moment)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.True(t, end.After(start))
}

func TestStartOfDayConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:00 local on the 16th is still the 15th in UTC.
	moment := time.Date(2026, 3, 16, 2, 0, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), StartOfDay(moment))
}

func TestIsSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC)

	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsSameDay(evening, nextDay))
}

func TestDaysBetween(t *testing.T) {
	d1 := Date(2026, 3, 10)
	d2 := Date(2026, 3, 15)

	assert.Equal(t, 5, DaysBetween(d1, d2))
	// Order does not matter.
	assert.Equal(t, 5, DaysBetween(d2, d1))
	assert.Equal(t, 0, DaysBetween(d1, d1))
}

func TestDeadlineHelpers(t *testing.T) {
	now := Date(2026, 3, 15)

	assert.False(t, HasDeadline(time.Time{}))
	assert.False(t, IsPastDeadline(time.Time{}, now))
	assert.Equal(t, 0, DaysUntil(time.Time{}, now))

	future := Date(2026, 3, 20)
	assert.True(t, HasDeadline(future))
	assert.False(t, IsPastDeadline(future, now))
	assert.Equal(t, 5, DaysUntil(future, now))

	past := Date(2026, 3, 10)
	assert.True(t, IsPastDeadline(past, now))
	assert.Equal(t, -5, DaysUntil(past, now))
}

func TestFormatRelativePast(t *testing.T) {
	now := Now()

	assert.Equal(t, "just now", FormatRelative(now.Add(-30*time.Second)))
	assert.Equal(t, "5m ago", FormatRelative(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", FormatRelative(now.Add(-3*time.Hour)))
	assert.Equal(t, "yesterday", FormatRelative(now.Add(-25*time.Hour)))
	assert.Equal(t, "3d ago", FormatRelative(now.Add(-3*24*time.Hour)))
	assert.Equal(t, "2w ago", FormatRelative(now.Add(-15*24*time.Hour)))
}

func TestFormatRelativeFuture(t *testing.T) {
	now := Now()

	assert.Equal(t, "in 30m", FormatRelative(now.Add(31*time.Minute)))
	assert.Equal(t, "in 5h", FormatRelative(now.Add(5*time.Hour+time.Minute)))
	assert.Equal(t, "in 4d", FormatRelative(now.Add(4*24*time.Hour+time.Hour)))
}

func TestParseAndFormatRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, Date(2026, 3, 15), parsed)
	assert.Equal(t, "2026-03-15", FormatDateStr(parsed))

	withTime, err := ParseDateTime("2026-03-15 14:30")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15 14:30", FormatDateTimeStr(withTime))

	_, err = ParseDate("15.03.2026")
	assert.Error(t, err)
}
