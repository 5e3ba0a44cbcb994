package query

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

// ─────────────────────────────────────────────────────────────────────────────
// In-memory фейки для read-side тестов.
// ─────────────────────────────────────────────────────────────────────────────

type fakeUsers struct {
	byTelegram map[user.TelegramID]*user.User
}

func (f fakeUsers) Create(context.Context, *user.User) error { return shared.ErrUserAlreadyExists }
func (f fakeUsers) Update(context.Context, *user.User) error { return nil }
func (f fakeUsers) Count(context.Context) (int, error)       { return len(f.byTelegram), nil }

func (f fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range f.byTelegram {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (f fakeUsers) GetByTelegramID(_ context.Context, tid user.TelegramID) (*user.User, error) {
	u, ok := f.byTelegram[tid]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) GetAll(context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range f.byTelegram {
		out = append(out, u)
	}
	return out, nil
}

type fakeGrants struct {
	granted []*gamification.Achievement
}

func (f fakeGrants) ListGrantedIDs(context.Context, string) (map[string]bool, error) {
	return nil, nil
}
func (f fakeGrants) Grant(context.Context, *gamification.UserAchievement) error { return nil }
func (f fakeGrants) ListForUser(context.Context, string) ([]*gamification.Achievement, error) {
	return f.granted, nil
}

type fakeLogs struct {
	entries []*task.OutcomeLog
	topName string
}

func (f fakeLogs) Append(context.Context, *task.OutcomeLog) error { return nil }
func (f fakeLogs) LastForUser(context.Context, string) (*task.OutcomeLog, error) {
	return nil, nil
}
func (f fakeLogs) CountCompletedInCategory(context.Context, string, string) (int, error) {
	return 0, nil
}
func (f fakeLogs) LastInCategory(context.Context, string, string, int) ([]*task.OutcomeLog, error) {
	return nil, nil
}

func (f fakeLogs) CountByStatusSince(_ context.Context, userID string, status task.OutcomeStatus, since time.Time) (int, error) {
	n := 0
	for _, l := range f.entries {
		if l.UserID == userID && l.Status == status && !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f fakeLogs) TopCategorySince(context.Context, string, time.Time) (string, error) {
	return f.topName, nil
}

type fakeTasks struct {
	active []*task.Task
}

func (f fakeTasks) Create(context.Context, *task.Task) error { return nil }
func (f fakeTasks) GetByID(context.Context, string) (*task.Task, error) {
	return nil, shared.ErrTaskNotFound
}
func (f fakeTasks) Update(context.Context, *task.Task) error { return nil }
func (f fakeTasks) ListActive(context.Context, string) ([]*task.Task, error) {
	return f.active, nil
}
func (f fakeTasks) ListByCategory(context.Context, string, string) ([]*task.Task, error) {
	return nil, nil
}
func (f fakeTasks) HasCompletedWithTarget(context.Context, string, string) (bool, error) {
	return false, nil
}

type fakeCategories struct {
	all []*task.Category
}

func (f fakeCategories) GetByID(_ context.Context, id string) (*task.Category, error) {
	for _, c := range f.all {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrCategoryNotFound
}

func (f fakeCategories) GetByName(_ context.Context, name string) (*task.Category, error) {
	for _, c := range f.all {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrCategoryNotFound
}

func (f fakeCategories) GetAll(context.Context) ([]*task.Category, error) {
	return f.all, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetProgress
// ─────────────────────────────────────────────────────────────────────────────

func testUser(xp int) *user.User {
	prog := gamification.NewProgression(100, 10)
	return &user.User{
		ID:          "u-1",
		TelegramID:  42,
		FirstName:   "Айдар",
		XP:          user.XP(xp),
		Level:       prog.LevelForXP(user.XP(xp)),
		TotalPoints: user.Points(xp),
		Streak:      user.Streak{Current: 3, Longest: 7, LastLogAt: timeutil.Now()},
	}
}

func TestGetProgress_Snapshot(t *testing.T) {
	u := testUser(250) // уровень 2: [100, 400)
	users := fakeUsers{byTelegram: map[user.TelegramID]*user.User{42: u}}
	grants := fakeGrants{granted: []*gamification.Achievement{
		{Name: "Железный", Description: "7 дней подряд", Emoji: "🔥"},
	}}

	h := NewGetProgressHandler(users, grants, gamification.NewProgression(100, 10), nil, logger.Default())

	s, err := h.Handle(context.Background(), GetProgressQuery{TelegramID: 42})
	require.NoError(t, err)

	assert.Equal(t, "Айдар", s.DisplayName)
	assert.Equal(t, 250, s.XP)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 150, s.IntoLevel)
	assert.Equal(t, 300, s.Span)
	assert.Equal(t, 400, s.NextXP)
	assert.Equal(t, 50, s.Percent)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 7, s.LongestStreak)
	require.Len(t, s.Achievements, 1)
	assert.Equal(t, "Железный", s.Achievements[0].Name)
}

func TestGetProgress_UnknownUser(t *testing.T) {
	h := NewGetProgressHandler(
		fakeUsers{byTelegram: map[user.TelegramID]*user.User{}},
		fakeGrants{}, gamification.NewProgression(100, 10), nil, logger.Default(),
	)

	_, err := h.Handle(context.Background(), GetProgressQuery{TelegramID: 99})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStats
// ─────────────────────────────────────────────────────────────────────────────

func TestGetStats_Windows(t *testing.T) {
	now := timeutil.DateTime(2024, 3, 20, 15, 0, 0) // среда

	u := testUser(0)
	users := fakeUsers{byTelegram: map[user.TelegramID]*user.User{42: u}}

	logs := fakeLogs{
		topName: "Работа",
		entries: []*task.OutcomeLog{
			// сегодня: 2 выполнено, 1 пропуск
			{UserID: "u-1", Status: task.OutcomeCompleted, CreatedAt: now.Add(-1 * time.Hour)},
			{UserID: "u-1", Status: task.OutcomeCompleted, CreatedAt: now.Add(-2 * time.Hour)},
			{UserID: "u-1", Status: task.OutcomeMissed, CreatedAt: now.Add(-3 * time.Hour)},
			// понедельник той же недели
			{UserID: "u-1", Status: task.OutcomeCompleted, CreatedAt: timeutil.DateTime(2024, 3, 18, 10, 0, 0)},
			// начало месяца
			{UserID: "u-1", Status: task.OutcomeMissed, CreatedAt: timeutil.DateTime(2024, 3, 2, 10, 0, 0)},
			// прошлый месяц - не попадает ни в одно окно
			{UserID: "u-1", Status: task.OutcomeCompleted, CreatedAt: timeutil.DateTime(2024, 2, 10, 10, 0, 0)},
		},
	}

	h := NewGetStatsHandler(users, logs)
	h.now = func() time.Time { return now }

	report, err := h.Handle(context.Background(), GetStatsQuery{TelegramID: 42})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Today.Completed)
	assert.Equal(t, 1, report.Today.Missed)
	assert.Equal(t, 66, report.Today.Percent)

	assert.Equal(t, 3, report.Week.Completed)
	assert.Equal(t, 1, report.Week.Missed)

	assert.Equal(t, 3, report.Month.Completed)
	assert.Equal(t, 2, report.Month.Missed)
	assert.Equal(t, 60, report.Month.Percent)

	assert.Equal(t, "Работа", report.TopCategory)
}

// ─────────────────────────────────────────────────────────────────────────────
// ListTasks
// ─────────────────────────────────────────────────────────────────────────────

func TestListTasks_GroupsByCategory(t *testing.T) {
	u := testUser(0)
	users := fakeUsers{byTelegram: map[user.TelegramID]*user.User{42: u}}

	work := &task.Category{ID: "c-work", Name: "Работа", Emoji: "💼"}
	sport := &task.Category{ID: "c-sport", Name: "Тренировки", Emoji: "🏋️"}
	categories := fakeCategories{all: []*task.Category{work, sport}}

	base := timeutil.DateTime(2024, 3, 1, 9, 0, 0)
	tasks := fakeTasks{active: []*task.Task{
		{ID: "t-1", UserID: "u-1", CategoryID: "c-sport", Title: "Кардио", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "t-2", UserID: "u-1", CategoryID: "c-work", Title: "Отчёт", CreatedAt: base},
		{ID: "t-3", UserID: "u-1", CategoryID: "c-work", Title: "Письма", CreatedAt: base.Add(time.Hour)},
	}}

	h := NewListTasksHandler(users, tasks, categories)

	groups, err := h.Handle(context.Background(), ListTasksQuery{TelegramID: 42})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// группы упорядочены по имени категории
	assert.Equal(t, "Работа", groups[0].Category.Name)
	require.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "Отчёт", groups[0].Tasks[0].Title)
	assert.Equal(t, "Письма", groups[0].Tasks[1].Title)

	assert.Equal(t, "Тренировки", groups[1].Category.Name)
	require.Len(t, groups[1].Tasks, 1)
}

func TestListTasks_Empty(t *testing.T) {
	u := testUser(0)
	h := NewListTasksHandler(
		fakeUsers{byTelegram: map[user.TelegramID]*user.User{42: u}},
		fakeTasks{}, fakeCategories{},
	)

	groups, err := h.Handle(context.Background(), ListTasksQuery{TelegramID: 42})
	require.NoError(t, err)
	assert.Empty(t, groups)
}
