package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	// 23:30 Moscow time stays on the same calendar day
	ts := DateTime(2025, 3, 10, 23, 30, 0)
	start := StartOfDay(ts)

	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 10, start.Day())
	assert.Equal(t, 0, start.Hour())
}

func TestStartOfDayCrossesTimezone(t *testing.T) {
	// 22:30 UTC on March 10 is already March 11 in Moscow (UTC+3)
	ts := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)
	start := StartOfDay(ts)

	assert.Equal(t, 11, start.Day())
}

func TestIsSameDay(t *testing.T) {
	a := DateTime(2025, 3, 10, 0, 1, 0)
	b := DateTime(2025, 3, 10, 23, 59, 0)
	c := DateTime(2025, 3, 11, 0, 0, 0)

	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(b, c))
	// one minute apart across midnight is still a different day
	assert.False(t, IsSameDay(DateTime(2025, 3, 10, 23, 59, 0), c))
}

func TestIsNextDay(t *testing.T) {
	assert.True(t, IsNextDay(Date(2025, 3, 10), Date(2025, 3, 11)))
	assert.False(t, IsNextDay(Date(2025, 3, 10), Date(2025, 3, 12)))
	assert.False(t, IsNextDay(Date(2025, 3, 10), Date(2025, 3, 10)))
	// month boundary
	assert.True(t, IsNextDay(Date(2025, 2, 28), Date(2025, 3, 1)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(DateTime(2025, 3, 10, 1, 0, 0), DateTime(2025, 3, 10, 23, 0, 0)))
	assert.Equal(t, 1, DaysBetween(Date(2025, 3, 10), Date(2025, 3, 11)))
	assert.Equal(t, 3, DaysBetween(Date(2025, 3, 10), Date(2025, 3, 13)))
	assert.Equal(t, -1, DaysBetween(Date(2025, 3, 11), Date(2025, 3, 10)))
}

func TestStartOfWeek(t *testing.T) {
	// 2025-03-12 is a Wednesday, week starts Monday 2025-03-10
	start := StartOfWeek(Date(2025, 3, 12))
	assert.Equal(t, 10, start.Day())
	assert.Equal(t, time.Monday, start.Weekday())

	// Sunday belongs to the week that started the previous Monday
	sunday := StartOfWeek(Date(2025, 3, 16))
	assert.Equal(t, 10, sunday.Day())
}

func TestFormatRussian(t *testing.T) {
	assert.Equal(t, "05.03.2025", FormatRussian(Date(2025, 3, 5)))
}
