// Package jobs contains implementations of scheduled jobs for the quest
// coach bot.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY DIGEST JOB
// Утренняя сводка: серия, активные задачи и вчерашние исходы.
// ══════════════════════════════════════════════════════════════════════════════

// MessageSender delivers a text message to a Telegram chat.
type MessageSender interface {
	SendHTML(ctx context.Context, chatID int64, text string) error
}

// DailyDigestJob sends the morning summary to every user: current streak,
// active task count and yesterday's outcomes.
type DailyDigestJob struct {
	users  user.Repository
	tasks  task.Repository
	logs   task.LogRepository
	sender MessageSender
	logger *slog.Logger
	now    func() time.Time
}

// NewDailyDigestJob creates the job.
func NewDailyDigestJob(
	users user.Repository,
	tasks task.Repository,
	logs task.LogRepository,
	sender MessageSender,
	logger *slog.Logger,
) *DailyDigestJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyDigestJob{
		users:  users,
		tasks:  tasks,
		logs:   logs,
		sender: sender,
		logger: logger,
		now:    timeutil.Now,
	}
}

// Name implements scheduler.Job.
func (j *DailyDigestJob) Name() string { return "daily_digest" }

// Description implements scheduler.Job.
func (j *DailyDigestJob) Description() string {
	return "Sends the morning digest with streak, tasks and yesterday's results"
}

// Run implements scheduler.Job. A failed delivery to one user does not
// stop the rest.
func (j *DailyDigestJob) Run(ctx context.Context) error {
	users, err := j.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	var sent, failed int
	for _, u := range users {
		if err := j.sendDigest(ctx, u); err != nil {
			failed++
			j.logger.Warn("digest delivery failed",
				"user_id", u.ID,
				"error", err,
			)
			continue
		}
		sent++
	}

	j.logger.Info("daily digest finished", "sent", sent, "failed", failed)
	return nil
}

func (j *DailyDigestJob) sendDigest(ctx context.Context, u *user.User) error {
	active, err := j.tasks.ListActive(ctx, u.ID)
	if err != nil {
		return err
	}

	now := j.now()
	yesterday := timeutil.StartOfDay(now.AddDate(0, 0, -1))
	completedYesterday, err := j.logs.CountByStatusSince(ctx, u.ID, task.OutcomeCompleted, yesterday)
	if err != nil {
		return err
	}

	text := j.buildDigest(u, len(active), completedYesterday)
	return j.sender.SendHTML(ctx, int64(u.TelegramID), text)
}

func (j *DailyDigestJob) buildDigest(u *user.User, activeTasks, completedYesterday int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "☀️ Доброе утро, %s!\n\n", u.DisplayName())

	if u.Streak.Current > 0 {
		fmt.Fprintf(&b, "🔥 Серия: %d дн.\n", u.Streak.Current)
	} else {
		b.WriteString("🔥 Серия прервана - сегодня отличный день, чтобы начать новую!\n")
	}

	if completedYesterday > 0 {
		fmt.Fprintf(&b, "✅ Вчера выполнено: %d\n", completedYesterday)
	}

	if activeTasks > 0 {
		fmt.Fprintf(&b, "\n📋 Активных задач: %d. Вперёд!", activeTasks)
	} else {
		b.WriteString("\n📋 Активных задач нет. Добавь новую через /add!")
	}

	return b.String()
}
