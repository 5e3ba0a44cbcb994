// Package callback contains Telegram callback query handlers.
package callback

import (
	"context"
	"errors"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/openai"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOME CALLBACK HANDLER
// Кнопки ✅/❌ под списком задач: complete:<id> и miss:<id>.
// Выполнение начисляет XP и проверяет достижения, пропуск сбрасывает
// серию; к ответу добавляется мотивационная строка от ассистента.
// ══════════════════════════════════════════════════════════════════════════════

// OutcomeHandler handles task outcome callbacks.
type OutcomeHandler struct {
	complete  *command.CompleteTaskHandler
	miss      *command.MissTaskHandler
	assistant *openai.Assistant
	presenter *presenter.OutcomePresenter
	keyboards *presenter.KeyboardBuilder
}

// NewOutcomeHandler creates a new OutcomeHandler.
func NewOutcomeHandler(
	complete *command.CompleteTaskHandler,
	miss *command.MissTaskHandler,
	assistant *openai.Assistant,
	p *presenter.OutcomePresenter,
	keyboards *presenter.KeyboardBuilder,
) *OutcomeHandler {
	return &OutcomeHandler{
		complete:  complete,
		miss:      miss,
		assistant: assistant,
		presenter: p,
		keyboards: keyboards,
	}
}

// OutcomeRequest contains the parsed callback data.
type OutcomeRequest struct {
	TelegramID int64
	ChatID     int64

	// TaskID is the callback payload after the prefix.
	TaskID string
}

// HandleComplete processes a complete:<id> callback.
func (h *OutcomeHandler) HandleComplete(ctx context.Context, req OutcomeRequest) (*handler.Response, error) {
	result, err := h.complete.Handle(ctx, command.CompleteTaskCommand{
		TaskID:     req.TaskID,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		if resp := staleTaskResponse(err); resp != nil {
			return resp, nil
		}
		return nil, err
	}

	motivation := ""
	if !result.AlreadyCompleted {
		motivation = h.assistant.Motivation(ctx, true, result.Task.Title, int(result.User.Level))
	}

	text := h.presenter.FormatCompletion(result, motivation)
	return handler.HTMLWithKeyboard(text, h.keyboards.AfterOutcomeKeyboard()), nil
}

// HandleMiss processes a miss:<id> callback.
func (h *OutcomeHandler) HandleMiss(ctx context.Context, req OutcomeRequest) (*handler.Response, error) {
	result, err := h.miss.Handle(ctx, command.MissTaskCommand{
		TaskID:     req.TaskID,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		if resp := staleTaskResponse(err); resp != nil {
			return resp, nil
		}
		return nil, err
	}

	motivation := h.assistant.Motivation(ctx, false, result.Task.Title, int(result.User.Level))
	text := h.presenter.FormatMiss(result, motivation)
	return handler.HTMLWithKeyboard(text, h.keyboards.AfterOutcomeKeyboard()), nil
}

// staleTaskResponse отвечает на нажатия по устаревшим клавиатурам:
// задача могла быть удалена или принадлежать другому пользователю.
func staleTaskResponse(err error) *handler.Response {
	if errors.Is(err, shared.ErrNotFound) {
		return handler.HTML("Эта задача уже недоступна. Обнови список: /tasks")
	}
	if errors.Is(err, shared.ErrInvalidState) {
		return handler.HTML("С этой задачей так не получится. Обнови список: /tasks")
	}
	return nil
}
