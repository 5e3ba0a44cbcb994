// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Снимок прогресса для карточки "Твой прогресс": уровень, шкала,
// серии, достижения. Читается через кэш; команды сбрасывают кэш
// после каждой записи.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementView is the presentation slice of a granted achievement.
type AchievementView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// ProgressSnapshot is the cacheable progress card payload.
type ProgressSnapshot struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`

	XP          int `json:"xp"`
	Level       int `json:"level"`
	TotalPoints int `json:"total_points"`

	IntoLevel int    `json:"into_level"`
	Span      int    `json:"span"`
	NextXP    int    `json:"next_xp"`
	Percent   int    `json:"percent"`
	Bar       string `json:"bar"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	Achievements []AchievementView `json:"achievements"`
}

// SnapshotCache caches progress snapshots per user.
// Get returns (nil, nil) on a cache miss.
type SnapshotCache interface {
	Get(ctx context.Context, userID string) (*ProgressSnapshot, error)
	Set(ctx context.Context, userID string, s *ProgressSnapshot) error
}

// GetProgressQuery contains the query parameters.
type GetProgressQuery struct {
	TelegramID int64
}

// GetProgressHandler handles progress card reads.
type GetProgressHandler struct {
	users       user.Repository
	grants      gamification.GrantRepository
	progression gamification.Progression
	cache       SnapshotCache
	log         *logger.Logger
}

// NewGetProgressHandler creates the handler. cache may be nil.
func NewGetProgressHandler(
	users user.Repository,
	grants gamification.GrantRepository,
	progression gamification.Progression,
	cache SnapshotCache,
	log *logger.Logger,
) *GetProgressHandler {
	return &GetProgressHandler{
		users:       users,
		grants:      grants,
		progression: progression,
		cache:       cache,
		log:         log,
	}
}

// Handle executes the query.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressSnapshot, error) {
	u, err := h.users.GetByTelegramID(ctx, user.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, u.ID)
		if err != nil {
			h.log.Warn("progress cache read failed", logger.UserID(u.ID), logger.Err(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	granted, err := h.grants.ListForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	lp := h.progression.ProgressWithinLevel(u.XP)
	snapshot := &ProgressSnapshot{
		UserID:        u.ID,
		DisplayName:   u.DisplayName(),
		XP:            int(u.XP),
		Level:         int(lp.Level),
		TotalPoints:   int(u.TotalPoints),
		IntoLevel:     int(lp.IntoLevel),
		Span:          int(lp.Span),
		NextXP:        int(lp.NextXP),
		Percent:       lp.Percent,
		Bar:           h.progression.RenderBar(lp.Percent),
		CurrentStreak: u.Streak.Current,
		LongestStreak: u.Streak.Longest,
	}
	for _, a := range granted {
		snapshot.Achievements = append(snapshot.Achievements, AchievementView{
			Name:        a.Name,
			Description: a.Description,
			Emoji:       a.Emoji,
		})
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, u.ID, snapshot); err != nil {
			h.log.Warn("progress cache write failed", logger.UserID(u.ID), logger.Err(err))
		}
	}

	return snapshot, nil
}
