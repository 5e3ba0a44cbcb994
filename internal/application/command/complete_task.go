package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE TASK COMMAND
// The full completion lifecycle: mark the task, credit XP, recompute
// level and streak, append the outcome log, grant achievements. All
// changes are atomic - either everything applies or nothing does.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteTaskCommand contains the data to complete a task.
type CompleteTaskCommand struct {
	// TaskID is the task being completed.
	TaskID string

	// TelegramID is the reporting user; the task must belong to them.
	TelegramID int64
}

// Validate validates the command.
func (c CompleteTaskCommand) Validate() error {
	if c.TaskID == "" {
		return errors.New("complete_task: task_id is required")
	}
	if c.TelegramID <= 0 {
		return errors.New("complete_task: telegram_id is required")
	}
	return nil
}

// CompleteTaskResult contains the outcome of completing a task.
type CompleteTaskResult struct {
	// AlreadyCompleted reports the idempotent no-op outcome: the task
	// was completed earlier and nothing changed. Not an error.
	AlreadyCompleted bool

	Task *task.Task
	User *user.User

	XPEarned int
	LevelUp  bool
	OldLevel user.Level
	NewLevel user.Level

	Streak       user.Streak
	StreakBroken bool

	Unlocked []*gamification.Achievement
	Progress gamification.LevelProgress
}

// CompleteTaskHandler handles task completion.
type CompleteTaskHandler struct {
	uow         UnitOfWork
	progression gamification.Progression
	xpBase      float64
	xpMult      float64
	bus         shared.EventPublisher
	cache       ProgressCache
	log         *logger.Logger
	now         func() time.Time
}

// NewCompleteTaskHandler creates the handler. bus and cache may be nil.
func NewCompleteTaskHandler(
	uow UnitOfWork,
	progression gamification.Progression,
	xpBase, xpMult float64,
	bus shared.EventPublisher,
	cache ProgressCache,
	log *logger.Logger,
) *CompleteTaskHandler {
	return &CompleteTaskHandler{
		uow:         uow,
		progression: progression,
		xpBase:      xpBase,
		xpMult:      xpMult,
		bus:         bus,
		cache:       cache,
		log:         log,
		now:         timeutil.Now,
	}
}

// Handle executes the command.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()
	result := &CompleteTaskResult{}
	var events []shared.Event

	err := h.uow.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		t, err := r.Tasks.GetByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}

		u, err := r.Users.GetByID(ctx, t.UserID)
		if err != nil {
			return err
		}
		if u.TelegramID != user.TelegramID(cmd.TelegramID) {
			return shared.ErrTaskNotFound
		}

		if t.IsCompleted {
			result.AlreadyCompleted = true
			result.Task = t
			result.User = u
			return nil
		}

		// the last log entry is read before appending a new one:
		// the streak transition is derived from it
		lastLog, err := r.Logs.LastForUser(ctx, u.ID)
		if err != nil {
			return err
		}

		if err := t.Complete(now); err != nil {
			return err
		}

		xp := h.progression.XPForTask(h.xpBase, h.xpMult)
		oldLevel := u.Level
		u.CreditXP(xp, now)

		tr := gamification.NextStreak(
			gamification.StreakState{Current: u.Streak.Current, Longest: u.Streak.Longest},
			toLastOutcome(lastLog),
			now, true,
		)
		u.ApplyStreak(user.Streak{
			Current:   tr.State.Current,
			Longest:   tr.State.Longest,
			LastLogAt: now,
		}, now)

		if err := r.Tasks.Update(ctx, t); err != nil {
			return err
		}
		if err := r.Logs.Append(ctx, &task.OutcomeLog{
			ID:           uuid.New().String(),
			UserID:       u.ID,
			TaskID:       t.ID,
			Status:       task.OutcomeCompleted,
			XPEarned:     int(xp),
			PointsEarned: int(xp),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		unlocked, err := grantNewAchievements(ctx, r, u, now)
		if err != nil {
			return err
		}

		// the level is recomputed after all credits, including
		// achievement rewards
		u.Level = h.progression.LevelForXP(u.XP)
		if err := r.Users.Update(ctx, u); err != nil {
			return err
		}

		result.Task = t
		result.User = u
		result.XPEarned = int(xp)
		result.OldLevel = oldLevel
		result.NewLevel = u.Level
		result.LevelUp = u.Level > oldLevel
		result.Streak = u.Streak
		result.Unlocked = unlocked
		result.Progress = h.progression.ProgressWithinLevel(u.XP)

		events = h.collectEvents(t, u, result, tr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCompleted {
		h.afterCommit(ctx, result.User.ID, events)
	}

	return result, nil
}

func (h *CompleteTaskHandler) collectEvents(
	t *task.Task,
	u *user.User,
	result *CompleteTaskResult,
	tr gamification.StreakTransition,
) []shared.Event {
	events := []shared.Event{
		shared.TaskCompletedEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventTaskCompleted, t.ID),
			UserID:    u.ID,
			TaskID:    t.ID,
			Category:  t.CategoryID,
			XPEarned:  result.XPEarned,
		},
	}
	if result.LevelUp {
		events = append(events, shared.LevelUpEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, u.ID),
			UserID:    u.ID,
			OldLevel:  int(result.OldLevel),
			NewLevel:  int(result.NewLevel),
		})
	}
	if tr.Extended {
		events = append(events, shared.StreakExtendedEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventStreakExtended, u.ID),
			UserID:    u.ID,
			Days:      tr.State.Current,
		})
	}
	for _, a := range result.Unlocked {
		events = append(events, shared.AchievementUnlockedEvent{
			BaseEvent:       shared.NewBaseEvent(shared.EventAchievementUnlocked, u.ID),
			UserID:          u.ID,
			AchievementID:   a.ID,
			AchievementName: a.Name,
			XPReward:        a.XPReward,
		})
	}
	return events
}

// afterCommit publishes events and invalidates the progress cache.
// Failures here do not roll back the already committed transaction.
func (h *CompleteTaskHandler) afterCommit(ctx context.Context, userID string, events []shared.Event) {
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

// toLastOutcome converts a log entry into streak transition input.
func toLastOutcome(l *task.OutcomeLog) *gamification.LastOutcome {
	if l == nil {
		return nil
	}
	return &gamification.LastOutcome{
		At:        l.CreatedAt,
		Completed: l.IsCompleted(),
	}
}
