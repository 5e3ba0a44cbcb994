package handler

import (
	"context"
	"errors"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASKS HANDLER
// Список активных задач с кнопками отметки исхода.
// ══════════════════════════════════════════════════════════════════════════════

// TasksHandler handles the /tasks command.
type TasksHandler struct {
	list      *query.ListTasksHandler
	presenter *presenter.TaskListPresenter
}

// NewTasksHandler creates a new TasksHandler.
func NewTasksHandler(list *query.ListTasksHandler, p *presenter.TaskListPresenter) *TasksHandler {
	return &TasksHandler{
		list:      list,
		presenter: p,
	}
}

// TasksRequest contains the /tasks command data.
type TasksRequest struct {
	TelegramID int64
	ChatID     int64
}

// Handle processes the /tasks command.
func (h *TasksHandler) Handle(ctx context.Context, req TasksRequest) (*Response, error) {
	groups, err := h.list.Handle(ctx, query.ListTasksQuery{TelegramID: req.TelegramID})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return notRegisteredResponse(), nil
		}
		return nil, err
	}

	view := h.presenter.FormatTaskList(groups)
	return HTMLWithKeyboard(view.Text, view.Keyboard), nil
}
