package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

func activeReminder(at string) Reminder {
	return Reminder{
		ID:       "r-1",
		UserID:   "u-1",
		Time:     at,
		IsActive: true,
	}
}

func TestReminderDueAtMatchesMinute(t *testing.T) {
	r := activeReminder("09:00")

	assert.True(t, r.DueAt(timeutil.DateTime(2025, 3, 10, 9, 0, 0)))
	assert.False(t, r.DueAt(timeutil.DateTime(2025, 3, 10, 9, 1, 0)))
}

func TestReminderDueAtInactive(t *testing.T) {
	r := activeReminder("09:00")
	r.IsActive = false

	assert.False(t, r.DueAt(timeutil.DateTime(2025, 3, 10, 9, 0, 0)))
}

func TestReminderDueAtDaysOfWeek(t *testing.T) {
	r := activeReminder("09:00")
	r.DaysOfWeek = []int{1, 3, 5} // пн, ср, пт

	monday := timeutil.DateTime(2025, 3, 10, 9, 0, 0)
	tuesday := timeutil.DateTime(2025, 3, 11, 9, 0, 0)

	assert.True(t, r.DueAt(monday))
	assert.False(t, r.DueAt(tuesday))
}

func TestReminderDueAtSundayIsSeven(t *testing.T) {
	r := activeReminder("09:00")
	r.DaysOfWeek = []int{7}

	sunday := timeutil.DateTime(2025, 3, 16, 9, 0, 0)

	assert.True(t, r.DueAt(sunday))
}

func TestReminderDueAtAlreadySentToday(t *testing.T) {
	r := activeReminder("09:00")
	sent := timeutil.DateTime(2025, 3, 10, 9, 0, 0)
	r.LastSentAt = &sent

	assert.False(t, r.DueAt(timeutil.DateTime(2025, 3, 10, 9, 0, 0)))
	assert.True(t, r.DueAt(timeutil.DateTime(2025, 3, 11, 9, 0, 0)))
}

func TestReminderDueAtLastSentStoredInUTC(t *testing.T) {
	// база отдаёт TIMESTAMPTZ в UTC: 21:30 UTC 9 марта - это уже
	// 00:30 10 марта по Москве, то есть тот же календарный день,
	// что и момент проверки
	r := activeReminder("00:30")
	sent := time.Date(2025, 3, 9, 21, 30, 0, 0, time.UTC)
	r.LastSentAt = &sent

	assert.False(t, r.DueAt(timeutil.DateTime(2025, 3, 10, 0, 30, 0)))
	assert.True(t, r.DueAt(timeutil.DateTime(2025, 3, 11, 0, 30, 0)))
}

func TestReminderDueAtConvertsUTCMoment(t *testing.T) {
	// момент проверки в UTC сравнивается по местному времени
	r := activeReminder("00:30")

	utcMoment := time.Date(2025, 3, 9, 21, 30, 0, 0, time.UTC)

	assert.True(t, r.DueAt(utcMoment))
}
