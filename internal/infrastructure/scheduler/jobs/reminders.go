package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDERS JOB
// Поминутный опрос активных напоминаний. Повторная отправка в тот же
// день исключена через LastSentAt.
// ══════════════════════════════════════════════════════════════════════════════

// RemindersJob delivers due reminders.
type RemindersJob struct {
	reminders task.ReminderRepository
	users     user.Repository
	sender    MessageSender
	logger    *slog.Logger
	now       func() time.Time
}

// NewRemindersJob creates the job.
func NewRemindersJob(
	reminders task.ReminderRepository,
	users user.Repository,
	sender MessageSender,
	logger *slog.Logger,
) *RemindersJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemindersJob{
		reminders: reminders,
		users:     users,
		sender:    sender,
		logger:    logger,
		now:       timeutil.Now,
	}
}

// Name implements scheduler.Job.
func (j *RemindersJob) Name() string { return "reminders" }

// Description implements scheduler.Job.
func (j *RemindersJob) Description() string {
	return "Delivers due task reminders"
}

// Run implements scheduler.Job.
func (j *RemindersJob) Run(ctx context.Context) error {
	reminders, err := j.reminders.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load reminders: %w", err)
	}

	now := j.now()
	for _, r := range reminders {
		if !r.DueAt(now) {
			continue
		}

		if err := j.deliver(ctx, r, now); err != nil {
			j.logger.Warn("reminder delivery failed",
				"reminder_id", r.ID,
				"user_id", r.UserID,
				"error", err,
			)
		}
	}

	return nil
}

func (j *RemindersJob) deliver(ctx context.Context, r *task.Reminder, now time.Time) error {
	u, err := j.users.GetByID(ctx, r.UserID)
	if err != nil {
		return err
	}

	text := "⏰ " + r.Message
	if err := j.sender.SendHTML(ctx, int64(u.TelegramID), text); err != nil {
		return err
	}

	// MarkSent after a successful delivery only, so a failed send retries
	// on the next poll within the same minute window.
	return j.reminders.MarkSent(ctx, r.ID, now)
}
