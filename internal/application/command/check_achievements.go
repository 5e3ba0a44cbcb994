package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ACHIEVEMENTS COMMAND
// Re-evaluates the whole catalog against a user outside of the task
// completion flow: grants whatever is newly earned, credits rewards
// and recomputes the level. Already granted achievements never come
// back, so a second run in a row returns an empty batch.
// ══════════════════════════════════════════════════════════════════════════════

// CheckAchievementsCommand identifies the user to re-evaluate.
type CheckAchievementsCommand struct {
	UserID string
}

// Validate validates the command.
func (c CheckAchievementsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("check_achievements: user_id is required")
	}
	return nil
}

// CheckAchievementsResult contains the outcome of the re-evaluation.
type CheckAchievementsResult struct {
	User *user.User

	// Unlocked holds only the achievements granted by this run.
	Unlocked []*gamification.Achievement

	LevelUp  bool
	OldLevel user.Level
	NewLevel user.Level
}

// CheckAchievementsHandler handles on-demand achievement checks.
type CheckAchievementsHandler struct {
	uow         UnitOfWork
	progression gamification.Progression
	bus         shared.EventPublisher
	cache       ProgressCache
	log         *logger.Logger
	now         func() time.Time
}

// NewCheckAchievementsHandler creates the handler. bus and cache may be nil.
func NewCheckAchievementsHandler(
	uow UnitOfWork,
	progression gamification.Progression,
	bus shared.EventPublisher,
	cache ProgressCache,
	log *logger.Logger,
) *CheckAchievementsHandler {
	return &CheckAchievementsHandler{
		uow:         uow,
		progression: progression,
		bus:         bus,
		cache:       cache,
		log:         log,
		now:         timeutil.Now,
	}
}

// Handle executes the command.
func (h *CheckAchievementsHandler) Handle(ctx context.Context, cmd CheckAchievementsCommand) (*CheckAchievementsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()
	result := &CheckAchievementsResult{}
	var events []shared.Event

	err := h.uow.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		u, err := r.Users.GetByID(ctx, cmd.UserID)
		if err != nil {
			return err
		}

		oldLevel := u.Level
		unlocked, err := grantNewAchievements(ctx, r, u, now)
		if err != nil {
			return err
		}

		result.User = u
		result.Unlocked = unlocked
		result.OldLevel = oldLevel
		result.NewLevel = oldLevel

		if len(unlocked) == 0 {
			return nil
		}

		u.Level = h.progression.LevelForXP(u.XP)
		if err := r.Users.Update(ctx, u); err != nil {
			return err
		}

		result.NewLevel = u.Level
		result.LevelUp = u.Level > oldLevel

		for _, a := range unlocked {
			events = append(events, shared.AchievementUnlockedEvent{
				BaseEvent:       shared.NewBaseEvent(shared.EventAchievementUnlocked, u.ID),
				UserID:          u.ID,
				AchievementID:   a.ID,
				AchievementName: a.Name,
				XPReward:        a.XPReward,
			})
		}
		if result.LevelUp {
			events = append(events, shared.LevelUpEvent{
				BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, u.ID),
				UserID:    u.ID,
				OldLevel:  int(result.OldLevel),
				NewLevel:  int(result.NewLevel),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Unlocked) > 0 {
		h.afterCommit(ctx, result.User.ID, events)
	}

	return result, nil
}

func (h *CheckAchievementsHandler) afterCommit(ctx context.Context, userID string, events []shared.Event) {
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, userID); err != nil {
			h.log.Warn("progress cache invalidation failed",
				logger.UserID(userID), logger.Err(err))
		}
	}
	if h.bus == nil {
		return
	}
	for _, e := range events {
		if err := h.bus.Publish(e); err != nil {
			h.log.Warn("event publish failed",
				logger.F("event_type", e.EventType()), logger.Err(err))
		}
	}
}

// grantNewAchievements evaluates the catalog and grants anything the
// user newly qualifies for, crediting the rewards on the same user in
// the same transaction. The returned slice holds only the new grants.
func grantNewAchievements(
	ctx context.Context,
	r Repositories,
	u *user.User,
	now time.Time,
) ([]*gamification.Achievement, error) {
	catalog, err := r.Catalog.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	granted, err := r.Grants.ListGrantedIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	evaluator := gamification.NewEvaluator(categoryStats{r: r})
	unlocked, err := evaluator.Evaluate(ctx, u, catalog, granted)
	if err != nil {
		return nil, err
	}

	for _, a := range unlocked {
		err := r.Grants.Grant(ctx, &gamification.UserAchievement{
			ID:            uuid.New().String(),
			UserID:        u.ID,
			AchievementID: a.ID,
			UnlockedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		u.CreditXP(user.XP(a.XPReward), now)
	}

	return unlocked, nil
}
