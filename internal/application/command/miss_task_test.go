package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

func newMissHandler(s *memStore, at time.Time) *MissTaskHandler {
	h := NewMissTaskHandler(memUoW{s: s}, nil, nil, logger.Default())
	h.now = func() time.Time { return at }
	return h
}

func TestMissTaskBreaksStreak(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	u.Streak = user.Streak{Current: 5, Longest: 5, LastLogAt: timeutil.DateTime(2025, 3, 9, 20, 0, 0)}
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	result, err := newMissHandler(s, now).Handle(context.Background(),
		MissTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Streak.Current)
	assert.Equal(t, 5, result.Streak.Longest)
	assert.True(t, result.StreakBroken)
	assert.Equal(t, 5, result.PreviousStreak)
}

func TestMissTaskWritesZeroXPLog(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	_, err := newMissHandler(s, now).Handle(context.Background(),
		MissTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	require.Len(t, s.logs, 1)
	assert.Equal(t, task.OutcomeMissed, s.logs[0].Status)
	assert.Equal(t, 0, s.logs[0].XPEarned)
	assert.Equal(t, 0, s.logs[0].PointsEarned)
	// XP and the task itself are untouched
	assert.Equal(t, user.XP(0), s.users["u-1"].XP)
	assert.False(t, s.tasks["t-1"].IsCompleted)
}

func TestMissTaskDoesNotGrantAchievements(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	_, err := newMissHandler(s, now).Handle(context.Background(),
		MissTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.Empty(t, s.grants["u-1"])
}

func TestMissTaskNotFound(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	now := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	_, err := newMissHandler(s, now).Handle(context.Background(),
		MissTaskCommand{TaskID: "missing", TelegramID: testTelegramID})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
