package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

func TestNextStreakFirstEver(t *testing.T) {
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	tr := NextStreak(StreakState{}, nil, now, true)

	assert.Equal(t, 1, tr.State.Current)
	assert.Equal(t, 1, tr.State.Longest)
	assert.True(t, tr.Extended)
	assert.False(t, tr.Broken)
}

func TestNextStreakConsecutiveDay(t *testing.T) {
	yesterday := timeutil.DateTime(2025, 3, 9, 21, 0, 0)
	now := timeutil.DateTime(2025, 3, 10, 9, 0, 0)

	tr := NextStreak(
		StreakState{Current: 3, Longest: 5},
		&LastOutcome{At: yesterday, Completed: true},
		now, true,
	)

	assert.Equal(t, 4, tr.State.Current)
	assert.Equal(t, 5, tr.State.Longest)
}

func TestNextStreakSameDayRepeat(t *testing.T) {
	morning := timeutil.DateTime(2025, 3, 10, 9, 0, 0)
	evening := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	// второе выполнение за день серию не меняет
	tr := NextStreak(
		StreakState{Current: 4, Longest: 5},
		&LastOutcome{At: morning, Completed: true},
		evening, true,
	)

	assert.Equal(t, 4, tr.State.Current)
	assert.False(t, tr.Extended)
}

func TestNextStreakSameDayRecoveryAfterMiss(t *testing.T) {
	morning := timeutil.DateTime(2025, 3, 10, 9, 0, 0)
	evening := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	// после пропуска в тот же день серия начинается заново с единицы
	tr := NextStreak(
		StreakState{Current: 0, Longest: 5},
		&LastOutcome{At: morning, Completed: false},
		evening, true,
	)

	assert.Equal(t, 1, tr.State.Current)
	assert.Equal(t, 5, tr.State.Longest)
}

func TestNextStreakGapResets(t *testing.T) {
	threeDaysAgo := timeutil.DateTime(2025, 3, 7, 12, 0, 0)
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	tr := NextStreak(
		StreakState{Current: 7, Longest: 7},
		&LastOutcome{At: threeDaysAgo, Completed: true},
		now, true,
	)

	assert.Equal(t, 1, tr.State.Current)
	assert.Equal(t, 7, tr.State.Longest)
}

func TestNextStreakMissBreaks(t *testing.T) {
	yesterday := timeutil.DateTime(2025, 3, 9, 12, 0, 0)
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	tr := NextStreak(
		StreakState{Current: 6, Longest: 6},
		&LastOutcome{At: yesterday, Completed: true},
		now, false,
	)

	assert.Equal(t, 0, tr.State.Current)
	assert.Equal(t, 6, tr.State.Longest)
	assert.True(t, tr.Broken)
}

func TestNextStreakMissWithoutStreak(t *testing.T) {
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	tr := NextStreak(StreakState{Current: 0, Longest: 2}, nil, now, false)

	assert.Equal(t, 0, tr.State.Current)
	assert.False(t, tr.Broken)
}

func TestNextStreakUpdatesLongest(t *testing.T) {
	yesterday := timeutil.DateTime(2025, 3, 9, 12, 0, 0)
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	tr := NextStreak(
		StreakState{Current: 5, Longest: 5},
		&LastOutcome{At: yesterday, Completed: true},
		now, true,
	)

	assert.Equal(t, 6, tr.State.Current)
	assert.Equal(t, 6, tr.State.Longest)
}

func TestNextStreakLateEveningToEarlyMorning(t *testing.T) {
	// 23:50 и 00:10 следующего дня - соседние календарные дни
	lateNight := timeutil.DateTime(2025, 3, 9, 23, 50, 0)
	earlyMorning := timeutil.DateTime(2025, 3, 10, 0, 10, 0)

	tr := NextStreak(
		StreakState{Current: 2, Longest: 2},
		&LastOutcome{At: lateNight, Completed: true},
		earlyMorning, true,
	)

	assert.Equal(t, 3, tr.State.Current)
}
