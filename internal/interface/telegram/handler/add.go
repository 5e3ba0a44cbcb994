package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/openai"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD HANDLER
// Создание задачи из свободного текста: /add <текст> или просто
// сообщение без команды. Ассистент разбирает цель, срок и категорию;
// без API-ключа работают детерминированные запасные варианты.
// ══════════════════════════════════════════════════════════════════════════════

// AddHandler handles the /add command and free-form task input.
type AddHandler struct {
	assistant  *openai.Assistant
	categories task.CategoryRepository
	create     *command.CreateTaskHandler
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(
	assistant *openai.Assistant,
	categories task.CategoryRepository,
	create *command.CreateTaskHandler,
) *AddHandler {
	return &AddHandler{
		assistant:  assistant,
		categories: categories,
		create:     create,
	}
}

// AddRequest contains the task text to parse.
type AddRequest struct {
	TelegramID int64
	ChatID     int64
	Text       string
}

// Handle processes the task text.
func (h *AddHandler) Handle(ctx context.Context, req AddRequest) (*Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return HTML("Напиши задачу после команды, например:\n<code>/add выучить 50 французских слов до пятницы</code>"), nil
	}

	draft := h.assistant.ParseTask(ctx, text)
	categoryName := h.categorize(ctx, text)

	cmd := command.CreateTaskCommand{
		TelegramID:     req.TelegramID,
		Title:          draft.Title,
		CategoryName:   categoryName,
		TargetProgress: draft.TargetProgress,
		Deadline:       draft.Deadline,
	}
	if draft.CurrentProgress != nil {
		cmd.CurrentProgress = *draft.CurrentProgress
	}

	result, err := h.create.Handle(ctx, cmd)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return notRegisteredResponse(), nil
		}
		return nil, err
	}

	return HTML(h.confirmation(result)), nil
}

// categorize определяет категорию по каталогу; при пустом каталоге
// решение остаётся за командой создания.
func (h *AddHandler) categorize(ctx context.Context, text string) string {
	all, err := h.categories.GetAll(ctx)
	if err != nil || len(all) == 0 {
		return ""
	}
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	return h.assistant.CategorizeTask(ctx, text, names)
}

func (h *AddHandler) confirmation(r *command.CreateTaskResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Задача добавлена: <b>%s</b>\n", html.EscapeString(r.Task.Title)))
	sb.WriteString(fmt.Sprintf("📂 %s\n", html.EscapeString(r.Category.Label())))

	if r.Task.TargetProgress != nil && *r.Task.TargetProgress > 0 {
		sb.WriteString(fmt.Sprintf("🎯 Цель: %.0f (сейчас %.0f)\n", *r.Task.TargetProgress, r.Task.CurrentProgress))
	}
	if r.Task.Deadline != nil {
		sb.WriteString(fmt.Sprintf("📅 Срок: %s\n", timeutil.FormatRussian(*r.Task.Deadline)))
	}

	sb.WriteString("\nКогда выполнишь - отметь в /tasks 💪")
	return sb.String()
}
