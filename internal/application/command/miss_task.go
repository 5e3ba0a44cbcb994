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
// MISS TASK COMMAND
// A miss resets the streak and appends a zero-XP log entry. The
// task itself is untouched and achievements are not evaluated.
// ══════════════════════════════════════════════════════════════════════════════

// MissTaskCommand contains the data to report a missed task.
type MissTaskCommand struct {
	TaskID     string
	TelegramID int64
}

// Validate validates the command.
func (c MissTaskCommand) Validate() error {
	if c.TaskID == "" {
		return errors.New("miss_task: task_id is required")
	}
	if c.TelegramID <= 0 {
		return errors.New("miss_task: telegram_id is required")
	}
	return nil
}

// MissTaskResult contains the outcome of reporting a miss.
type MissTaskResult struct {
	Task *task.Task
	User *user.User

	Streak       user.Streak
	StreakBroken bool
	// PreviousStreak is the streak length before the reset.
	PreviousStreak int
}

// MissTaskHandler handles missed-task reports.
type MissTaskHandler struct {
	uow   UnitOfWork
	bus   shared.EventPublisher
	cache ProgressCache
	log   *logger.Logger
	now   func() time.Time
}

// NewMissTaskHandler creates the handler. bus and cache may be nil.
func NewMissTaskHandler(uow UnitOfWork, bus shared.EventPublisher, cache ProgressCache, log *logger.Logger) *MissTaskHandler {
	return &MissTaskHandler{
		uow:   uow,
		bus:   bus,
		cache: cache,
		log:   log,
		now:   timeutil.Now,
	}
}

// Handle executes the command.
func (h *MissTaskHandler) Handle(ctx context.Context, cmd MissTaskCommand) (*MissTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()
	result := &MissTaskResult{}

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

		lastLog, err := r.Logs.LastForUser(ctx, u.ID)
		if err != nil {
			return err
		}

		prev := u.Streak.Current
		tr := gamification.NextStreak(
			gamification.StreakState{Current: u.Streak.Current, Longest: u.Streak.Longest},
			toLastOutcome(lastLog),
			now, false,
		)
		u.ApplyStreak(user.Streak{
			Current:   tr.State.Current,
			Longest:   tr.State.Longest,
			LastLogAt: now,
		}, now)

		if err := r.Logs.Append(ctx, &task.OutcomeLog{
			ID:        uuid.New().String(),
			UserID:    u.ID,
			TaskID:    t.ID,
			Status:    task.OutcomeMissed,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := r.Users.Update(ctx, u); err != nil {
			return err
		}

		result.Task = t
		result.User = u
		result.Streak = u.Streak
		result.StreakBroken = tr.Broken
		result.PreviousStreak = prev
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.afterCommit(ctx, result)
	return result, nil
}

func (h *MissTaskHandler) afterCommit(ctx context.Context, result *MissTaskResult) {
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, result.User.ID); err != nil {
			h.log.Warn("progress cache invalidation failed",
				logger.UserID(result.User.ID), logger.Err(err))
		}
	}
	if h.bus == nil {
		return
	}

	events := []shared.Event{
		shared.TaskMissedEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventTaskMissed, result.Task.ID),
			UserID:    result.User.ID,
			TaskID:    result.Task.ID,
		},
	}
	if result.StreakBroken {
		events = append(events, shared.StreakBrokenEvent{
			BaseEvent:    shared.NewBaseEvent(shared.EventStreakBroken, result.User.ID),
			UserID:       result.User.ID,
			PreviousDays: result.PreviousStreak,
		})
	}
	for _, e := range events {
		if err := h.bus.Publish(e); err != nil {
			h.log.Warn("event publish failed",
				logger.F("event_type", e.EventType()), logger.Err(err))
		}
	}
}
