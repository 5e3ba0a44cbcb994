package query

import (
	"context"
	"sort"

	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST TASKS QUERY
// Активные задачи пользователя, сгруппированные по категориям.
// ══════════════════════════════════════════════════════════════════════════════

// TaskGroup is the tasks of one category.
type TaskGroup struct {
	Category *task.Category
	Tasks    []*task.Task
}

// ListTasksQuery contains the query parameters.
type ListTasksQuery struct {
	TelegramID int64
}

// ListTasksHandler handles /tasks reads.
type ListTasksHandler struct {
	users      user.Repository
	tasks      task.Repository
	categories task.CategoryRepository
}

// NewListTasksHandler creates the handler.
func NewListTasksHandler(users user.Repository, tasks task.Repository, categories task.CategoryRepository) *ListTasksHandler {
	return &ListTasksHandler{
		users:      users,
		tasks:      tasks,
		categories: categories,
	}
}

// Handle executes the query. Groups are ordered by category name,
// tasks inside a group from oldest to newest.
func (h *ListTasksHandler) Handle(ctx context.Context, q ListTasksQuery) ([]TaskGroup, error) {
	u, err := h.users.GetByTelegramID(ctx, user.TelegramID(q.TelegramID))
	if err != nil {
		return nil, err
	}

	active, err := h.tasks.ListActive(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	categories, err := h.categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*task.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	groups := make(map[string]*TaskGroup)
	for _, t := range active {
		g, ok := groups[t.CategoryID]
		if !ok {
			g = &TaskGroup{Category: byID[t.CategoryID]}
			groups[t.CategoryID] = g
		}
		g.Tasks = append(g.Tasks, t)
	}

	result := make([]TaskGroup, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Tasks, func(i, j int) bool {
			return g.Tasks[i].CreatedAt.Before(g.Tasks[j].CreatedAt)
		})
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		var ni, nj string
		if result[i].Category != nil {
			ni = result[i].Category.Name
		}
		if result[j].Category != nil {
			nj = result[j].Category.Name
		}
		return ni < nj
	})

	return result, nil
}
