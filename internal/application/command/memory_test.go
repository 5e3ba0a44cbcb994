package command

import (
	"context"
	"sort"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

// In-memory store backing the lifecycle tests.
type memStore struct {
	users      map[string]*user.User
	tasks      map[string]*task.Task
	categories map[string]*task.Category
	logs       []*task.OutcomeLog
	catalog    []*gamification.Achievement
	grants     map[string]map[string]bool // userID -> achievementID
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*user.User),
		tasks:      make(map[string]*task.Task),
		categories: make(map[string]*task.Category),
		grants:     make(map[string]map[string]bool),
	}
}

func (s *memStore) repositories() Repositories {
	return Repositories{
		Users:      memUsers{s},
		Tasks:      memTasks{s},
		Categories: memCategories{s},
		Logs:       memLogs{s},
		Catalog:    memCatalog{s},
		Grants:     memGrants{s},
	}
}

// memUoW calls fn directly: the tests exercise flow semantics, not
// the driver's transaction handling.
type memUoW struct{ s *memStore }

func (m memUoW) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return fn(ctx, m.s.repositories())
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *user.User) error {
	if _, ok := r.s.users[u.ID]; ok {
		return shared.ErrUserAlreadyExists
	}
	for _, existing := range r.s.users {
		if existing.TelegramID == u.TelegramID {
			return shared.ErrUserAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByTelegramID(_ context.Context, telegramID user.TelegramID) (*user.User, error) {
	for _, u := range r.s.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r memUsers) Update(_ context.Context, u *user.User) error {
	if _, ok := r.s.users[u.ID]; !ok {
		return shared.ErrUserNotFound
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetAll(_ context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r memUsers) Count(_ context.Context) (int, error) { return len(r.s.users), nil }

type memTasks struct{ s *memStore }

func (r memTasks) Create(_ context.Context, t *task.Task) error {
	cp := *t
	r.s.tasks[t.ID] = &cp
	return nil
}

func (r memTasks) GetByID(_ context.Context, id string) (*task.Task, error) {
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, shared.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTasks) Update(_ context.Context, t *task.Task) error {
	if _, ok := r.s.tasks[t.ID]; !ok {
		return shared.ErrTaskNotFound
	}
	cp := *t
	r.s.tasks[t.ID] = &cp
	return nil
}

func (r memTasks) ListActive(_ context.Context, userID string) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.s.tasks {
		if t.UserID == userID && t.IsActive && !t.IsCompleted {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memTasks) ListByCategory(_ context.Context, userID, categoryID string) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.s.tasks {
		if t.UserID == userID && t.CategoryID == categoryID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memTasks) HasCompletedWithTarget(_ context.Context, userID, categoryID string) (bool, error) {
	for _, t := range r.s.tasks {
		if t.UserID == userID && t.CategoryID == categoryID && t.IsCompleted && t.TargetReached() {
			return true, nil
		}
	}
	return false, nil
}

type memCategories struct{ s *memStore }

func (r memCategories) GetByID(_ context.Context, id string) (*task.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, shared.ErrCategoryNotFound
	}
	return c, nil
}

func (r memCategories) GetByName(_ context.Context, name string) (*task.Category, error) {
	for _, c := range r.s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrCategoryNotFound
}

func (r memCategories) GetAll(_ context.Context) ([]*task.Category, error) {
	var out []*task.Category
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	return out, nil
}

type memLogs struct{ s *memStore }

func (r memLogs) Append(_ context.Context, l *task.OutcomeLog) error {
	cp := *l
	r.s.logs = append(r.s.logs, &cp)
	return nil
}

func (r memLogs) LastForUser(_ context.Context, userID string) (*task.OutcomeLog, error) {
	var last *task.OutcomeLog
	for _, l := range r.s.logs {
		if l.UserID == userID && (last == nil || l.CreatedAt.After(last.CreatedAt)) {
			last = l
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (r memLogs) CountCompletedInCategory(_ context.Context, userID, categoryID string) (int, error) {
	count := 0
	for _, l := range r.s.logs {
		if l.UserID != userID || !l.IsCompleted() {
			continue
		}
		if t, ok := r.s.tasks[l.TaskID]; ok && t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r memLogs) LastInCategory(_ context.Context, userID, categoryID string, limit int) ([]*task.OutcomeLog, error) {
	var matched []*task.OutcomeLog
	for _, l := range r.s.logs {
		if l.UserID != userID {
			continue
		}
		if t, ok := r.s.tasks[l.TaskID]; ok && t.CategoryID == categoryID {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r memLogs) CountByStatusSince(_ context.Context, userID string, status task.OutcomeStatus, since time.Time) (int, error) {
	count := 0
	for _, l := range r.s.logs {
		if l.UserID == userID && l.Status == status && !l.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r memLogs) TopCategorySince(_ context.Context, userID string, since time.Time) (string, error) {
	counts := make(map[string]int)
	for _, l := range r.s.logs {
		if l.UserID != userID || !l.IsCompleted() || l.CreatedAt.Before(since) {
			continue
		}
		if t, ok := r.s.tasks[l.TaskID]; ok {
			if c, ok := r.s.categories[t.CategoryID]; ok {
				counts[c.Name]++
			}
		}
	}
	top, best := "", 0
	for name, n := range counts {
		if n > best {
			top, best = name, n
		}
	}
	return top, nil
}

type memCatalog struct{ s *memStore }

func (r memCatalog) GetAll(_ context.Context) ([]*gamification.Achievement, error) {
	return r.s.catalog, nil
}

type memGrants struct{ s *memStore }

func (r memGrants) ListGrantedIDs(_ context.Context, userID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for id := range r.s.grants[userID] {
		out[id] = true
	}
	return out, nil
}

func (r memGrants) Grant(_ context.Context, ua *gamification.UserAchievement) error {
	byUser, ok := r.s.grants[ua.UserID]
	if !ok {
		byUser = make(map[string]bool)
		r.s.grants[ua.UserID] = byUser
	}
	if byUser[ua.AchievementID] {
		return shared.ErrAlreadyExists
	}
	byUser[ua.AchievementID] = true
	return nil
}

func (r memGrants) ListForUser(_ context.Context, userID string) ([]*gamification.Achievement, error) {
	var out []*gamification.Achievement
	for _, a := range r.s.catalog {
		if r.s.grants[userID][a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}
