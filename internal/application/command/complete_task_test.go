package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

const testTelegramID = int64(42)

func seedUser(s *memStore) *user.User {
	u := &user.User{
		ID:         "u-1",
		TelegramID: user.TelegramID(testTelegramID),
		FirstName:  "Алекс",
		XP:         0,
		Level:      1,
	}
	s.users[u.ID] = u
	return u
}

func seedTask(s *memStore, id string) *task.Task {
	t := &task.Task{
		ID:         id,
		UserID:     "u-1",
		CategoryID: "c-1",
		Title:      "Написать отчёт",
		IsActive:   true,
		CreatedAt:  timeutil.DateTime(2025, 3, 10, 8, 0, 0),
	}
	s.tasks[t.ID] = t
	return t
}

func newCompleteHandler(s *memStore, at time.Time) *CompleteTaskHandler {
	h := NewCompleteTaskHandler(
		memUoW{s: s},
		gamification.NewProgression(100, 10),
		10, 1.0,
		nil, nil,
		logger.Default(),
	)
	h.now = func() time.Time { return at }
	return h
}

func TestCompleteTaskHappyPath(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, 10, result.XPEarned)
	assert.Equal(t, 1, result.Streak.Current)
	assert.False(t, result.LevelUp)

	// the task is marked, the log appended, the user updated
	stored := s.tasks["t-1"]
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.CompletedAt)
	require.Len(t, s.logs, 1)
	assert.Equal(t, task.OutcomeCompleted, s.logs[0].Status)
	assert.Equal(t, 10, s.logs[0].XPEarned)
	assert.Equal(t, user.XP(10), s.users["u-1"].XP)
	assert.Equal(t, user.Points(10), s.users["u-1"].TotalPoints)
}

func TestCompleteTaskAlreadyCompleted(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	tk := seedTask(s, "t-1")
	done := timeutil.DateTime(2025, 3, 9, 10, 0, 0)
	tk.IsCompleted = true
	tk.CompletedAt = &done
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	// a repeat completion is not an error, but changes nothing
	require.NoError(t, err)
	assert.True(t, result.AlreadyCompleted)
	assert.Empty(t, s.logs)
	assert.Equal(t, user.XP(0), s.users["u-1"].XP)
}

func TestCompleteTaskNotFound(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	_, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "missing", TelegramID: testTelegramID})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompleteTaskForeignTask(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	// a foreign telegram_id does not see the task
	_, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: 999})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.False(t, s.tasks["t-1"].IsCompleted)
}

func TestCompleteTaskLevelUpAtThreshold(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	u.XP = 90
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	// 90 + 10 = 100 - the second level threshold
	require.NoError(t, err)
	assert.True(t, result.LevelUp)
	assert.Equal(t, user.Level(1), result.OldLevel)
	assert.Equal(t, user.Level(2), result.NewLevel)
}

func TestCompleteTaskSnapsProgressToTarget(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	tk := seedTask(s, "t-1")
	target := 100.0
	tk.CurrentProgress = 40
	tk.TargetProgress = &target
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	_, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.Equal(t, 100.0, s.tasks["t-1"].CurrentProgress)
}

func TestCompleteTaskContinuesStreakFromYesterday(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	yesterday := timeutil.DateTime(2025, 3, 9, 20, 0, 0)
	u.Streak = user.Streak{Current: 3, Longest: 5, LastLogAt: yesterday}
	seedTask(s, "t-old")
	s.logs = append(s.logs, &task.OutcomeLog{
		ID: "l-1", UserID: "u-1", TaskID: "t-old",
		Status: task.OutcomeCompleted, CreatedAt: yesterday,
	})
	seedTask(s, "t-1")
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.Equal(t, 4, result.Streak.Current)
	assert.Equal(t, 5, result.Streak.Longest)
}

func TestCompleteTaskSameDayRecoveryAfterMiss(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	morning := timeutil.DateTime(2025, 3, 10, 9, 0, 0)
	u.Streak = user.Streak{Current: 0, Longest: 6, LastLogAt: morning}
	seedTask(s, "t-missed")
	s.logs = append(s.logs, &task.OutcomeLog{
		ID: "l-1", UserID: "u-1", TaskID: "t-missed",
		Status: task.OutcomeMissed, CreatedAt: morning,
	})
	seedTask(s, "t-1")
	evening := timeutil.DateTime(2025, 3, 10, 21, 0, 0)

	result, err := newCompleteHandler(s, evening).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	// completing later the same day after a miss restarts the streak
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak.Current)
	assert.Equal(t, 6, result.Streak.Longest)
}

func TestCompleteTaskGrantsAchievementWithReward(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	yesterday := timeutil.DateTime(2025, 3, 9, 20, 0, 0)
	u.Streak = user.Streak{Current: 6, Longest: 6, LastLogAt: yesterday}
	seedTask(s, "t-old")
	s.logs = append(s.logs, &task.OutcomeLog{
		ID: "l-1", UserID: "u-1", TaskID: "t-old",
		Status: task.OutcomeCompleted, CreatedAt: yesterday,
	})
	seedTask(s, "t-1")
	s.catalog = []*gamification.Achievement{{
		ID:        "a-iron",
		Name:      "Железный",
		Emoji:     "🔥",
		Condition: gamification.StreakCondition{Days: 7},
		XPReward:  50,
	}}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "a-iron", result.Unlocked[0].ID)
	assert.True(t, s.grants["u-1"]["a-iron"])
	// 10 for the task + 50 reward, level recomputed after the reward
	assert.Equal(t, user.XP(60), s.users["u-1"].XP)
	assert.Equal(t, user.Level(1), s.users["u-1"].Level)
}

func TestCompleteTaskDoesNotRegrantAchievement(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	yesterday := timeutil.DateTime(2025, 3, 9, 20, 0, 0)
	u.Streak = user.Streak{Current: 8, Longest: 8, LastLogAt: yesterday}
	seedTask(s, "t-old")
	s.logs = append(s.logs, &task.OutcomeLog{
		ID: "l-1", UserID: "u-1", TaskID: "t-old",
		Status: task.OutcomeCompleted, CreatedAt: yesterday,
	})
	seedTask(s, "t-1")
	s.catalog = []*gamification.Achievement{{
		ID:        "a-iron",
		Name:      "Железный",
		Condition: gamification.StreakCondition{Days: 7},
		XPReward:  50,
	}}
	s.grants["u-1"] = map[string]bool{"a-iron": true}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.Empty(t, result.Unlocked)
	assert.Equal(t, user.XP(10), s.users["u-1"].XP, "the reward is not credited twice")
}

func TestCompleteTaskMalformedCatalogEntryIgnored(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	seedTask(s, "t-1")
	s.catalog = []*gamification.Achievement{{
		ID:               "a-bad",
		Name:             "Сломанное",
		ConditionKind:    gamification.KindStreak,
		ConditionPayload: "not-a-number",
		Condition:        nil,
	}}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCompleteHandler(s, now).Handle(context.Background(),
		CompleteTaskCommand{TaskID: "t-1", TelegramID: testTelegramID})

	require.NoError(t, err)
	assert.Empty(t, result.Unlocked)
	assert.True(t, s.tasks["t-1"].IsCompleted, "a broken catalog entry does not block completion")
}
