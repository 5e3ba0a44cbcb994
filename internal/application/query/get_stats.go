package query

import (
	"context"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS QUERY
// Сводка за день, неделю и месяц по журналу исходов.
// ══════════════════════════════════════════════════════════════════════════════

// StatsPeriod identifies a reporting window.
type StatsPeriod string

const (
	PeriodToday StatsPeriod = "today"
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
)

// PeriodStats holds the counters for one window.
type PeriodStats struct {
	Period    StatsPeriod
	Completed int
	Missed    int
	Percent   int // доля выполнений среди всех исходов, 0..100
}

// StatsReport is the full /stats payload.
type StatsReport struct {
	Today PeriodStats
	Week  PeriodStats
	Month PeriodStats

	// TopCategory is the month's most completed category; empty when the
	// month has no completions.
	TopCategory string
}

// GetStatsQuery contains the query parameters.
type GetStatsQuery struct {
	TelegramID int64
}

// GetStatsHandler handles /stats reads.
type GetStatsHandler struct {
	users user.Repository
	logs  task.LogRepository
	now   func() time.Time
}

// NewGetStatsHandler creates the handler.
func NewGetStatsHandler(users user.Repository, logs task.LogRepository) *GetStatsHandler {
	return &GetStatsHandler{
		users: users,
		logs:  logs,
		now:   timeutil.Now,
	}
}

// Handle executes the query.
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*StatsReport, error) {
	u, err := h.users.GetByTelegramID(ctx, user.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	now := h.now()
	report := &StatsReport{}

	windows := []struct {
		period StatsPeriod
		since  time.Time
		target *PeriodStats
	}{
		{PeriodToday, timeutil.StartOfDay(now), &report.Today},
		{PeriodWeek, timeutil.StartOfWeek(now), &report.Week},
		{PeriodMonth, timeutil.StartOfMonth(now), &report.Month},
	}

	for _, w := range windows {
		stats, err := h.periodStats(ctx, u.ID, w.period, w.since)
		if err != nil {
			return nil, err
		}
		*w.target = stats
	}

	top, err := h.logs.TopCategorySince(ctx, u.ID, timeutil.StartOfMonth(now))
	if err != nil {
		return nil, err
	}
	report.TopCategory = top

	return report, nil
}

func (h *GetStatsHandler) periodStats(ctx context.Context, userID string, period StatsPeriod, since time.Time) (PeriodStats, error) {
	completed, err := h.logs.CountByStatusSince(ctx, userID, task.OutcomeCompleted, since)
	if err != nil {
		return PeriodStats{}, err
	}
	missed, err := h.logs.CountByStatusSince(ctx, userID, task.OutcomeMissed, since)
	if err != nil {
		return PeriodStats{}, err
	}

	stats := PeriodStats{Period: period, Completed: completed, Missed: missed}
	if total := completed + missed; total > 0 {
		stats.Percent = completed * 100 / total
	}
	return stats, nil
}
