package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

func newCheckHandler(s *memStore, at time.Time) *CheckAchievementsHandler {
	h := NewCheckAchievementsHandler(
		memUoW{s: s},
		gamification.NewProgression(100, 10),
		nil, nil,
		logger.Default(),
	)
	h.now = func() time.Time { return at }
	return h
}

func TestCheckAchievementsGrantsEarned(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	u.Streak = user.Streak{Current: 7, Longest: 7}
	s.catalog = []*gamification.Achievement{{
		ID:        "a-iron",
		Name:      "Железный",
		Emoji:     "🔥",
		Condition: gamification.StreakCondition{Days: 7},
		XPReward:  50,
	}}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCheckHandler(s, now).Handle(context.Background(),
		CheckAchievementsCommand{UserID: "u-1"})

	require.NoError(t, err)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "a-iron", result.Unlocked[0].ID)
	assert.True(t, s.grants["u-1"]["a-iron"])
	assert.Equal(t, user.XP(50), s.users["u-1"].XP)
}

func TestCheckAchievementsSecondRunIsEmpty(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	u.Streak = user.Streak{Current: 7, Longest: 7}
	s.catalog = []*gamification.Achievement{{
		ID:        "a-iron",
		Name:      "Железный",
		Condition: gamification.StreakCondition{Days: 7},
		XPReward:  50,
	}}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)
	h := newCheckHandler(s, now)

	first, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "u-1"})
	require.NoError(t, err)
	require.Len(t, first.Unlocked, 1)

	// the same conditions still hold, but everything is granted already
	second, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "u-1"})
	require.NoError(t, err)
	assert.Empty(t, second.Unlocked)
	assert.Equal(t, user.XP(50), s.users["u-1"].XP, "the reward is not credited twice")
}

func TestCheckAchievementsRecomputesLevel(t *testing.T) {
	s := newMemStore()
	u := seedUser(s)
	u.XP = 80
	u.Streak = user.Streak{Current: 7, Longest: 7}
	s.catalog = []*gamification.Achievement{{
		ID:        "a-iron",
		Name:      "Железный",
		Condition: gamification.StreakCondition{Days: 7},
		XPReward:  50,
	}}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	// 80 + 50 = 130 crosses the second level threshold
	result, err := newCheckHandler(s, now).Handle(context.Background(),
		CheckAchievementsCommand{UserID: "u-1"})

	require.NoError(t, err)
	assert.True(t, result.LevelUp)
	assert.Equal(t, user.Level(1), result.OldLevel)
	assert.Equal(t, user.Level(2), result.NewLevel)
	assert.Equal(t, user.Level(2), s.users["u-1"].Level)
}

func TestCheckAchievementsNothingEarned(t *testing.T) {
	s := newMemStore()
	seedUser(s)
	s.catalog = []*gamification.Achievement{{
		ID:        "a-iron",
		Name:      "Железный",
		Condition: gamification.StreakCondition{Days: 7},
		XPReward:  50,
	}}
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	result, err := newCheckHandler(s, now).Handle(context.Background(),
		CheckAchievementsCommand{UserID: "u-1"})

	require.NoError(t, err)
	assert.Empty(t, result.Unlocked)
	assert.False(t, result.LevelUp)
	assert.Equal(t, user.XP(0), s.users["u-1"].XP)
}

func TestCheckAchievementsUnknownUser(t *testing.T) {
	s := newMemStore()
	now := timeutil.DateTime(2025, 3, 10, 12, 0, 0)

	_, err := newCheckHandler(s, now).Handle(context.Background(),
		CheckAchievementsCommand{UserID: "missing"})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
