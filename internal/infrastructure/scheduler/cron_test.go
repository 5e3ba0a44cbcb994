package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression_Valid(t *testing.T) {
	tests := []struct {
		expr    string
		minutes int
		hours   int
	}{
		{"* * * * *", 60, 24},
		{"*/5 * * * *", 12, 24},
		{"0 9 * * *", 1, 1},
		{"30 8,20 * * *", 1, 2},
		{"0 9-11 * * *", 1, 3},
	}

	for _, tt := range tests {
		ce, err := ParseCronExpression(tt.expr)
		require.NoError(t, err, "expr: %s", tt.expr)
		assert.Len(t, ce.minutes, tt.minutes, "minutes of %s", tt.expr)
		assert.Len(t, ce.hours, tt.hours, "hours of %s", tt.expr)
	}
}

func TestParseCronExpression_Invalid(t *testing.T) {
	for _, expr := range []string{
		"",
		"* * * *",
		"61 * * * *",
		"* 25 * * *",
		"*/0 * * * *",
		"a * * * *",
	} {
		_, err := ParseCronExpression(expr)
		assert.Error(t, err, "expr: %q", expr)
	}
}

func TestCronExpression_NextDailyAtNine(t *testing.T) {
	ce := MustParseCronExpression("0 9 * * *")

	// Before 09:00 - fires the same day.
	after := time.Date(2024, 3, 15, 7, 30, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), next)

	// After 09:00 - fires the next day.
	after = time.Date(2024, 3, 15, 9, 0, 30, 0, time.UTC)
	next = ce.Next(after)
	assert.Equal(t, time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_NextEveryFiveMinutes(t *testing.T) {
	ce := MustParseCronExpression("*/5 * * * *")

	after := time.Date(2024, 3, 15, 10, 2, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 5, 0, 0, time.UTC), ce.Next(after))
}

func TestCronExpression_Weekday(t *testing.T) {
	// Sundays only. March 15, 2024 is a Friday.
	ce := MustParseCronExpression("0 0 * * 0")

	after := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), next)
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(time.Minute)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(time.Minute), s.Next(now))
	assert.Equal(t, "@every 1m0s", s.String())
}
