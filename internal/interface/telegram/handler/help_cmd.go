package handler

import (
	"context"
)

// HelpCmdHandler handles the /help command.
type HelpCmdHandler struct{}

// NewHelpCmdHandler creates a new HelpCmdHandler.
func NewHelpCmdHandler() *HelpCmdHandler {
	return &HelpCmdHandler{}
}

// Handle shows the command reference.
func (h *HelpCmdHandler) Handle(ctx context.Context) (*Response, error) {
	return HTML(
		"🤖 <b>Что я умею</b>\n\n" +
			"/start - регистрация и приветствие\n" +
			"/add <i>текст</i> - добавить задачу (или просто напиши её текстом)\n" +
			"/tasks - активные задачи с кнопками ✅/❌\n" +
			"/progress - уровень, XP, серия и достижения\n" +
			"/stats - статистика за день, неделю и месяц\n" +
			"/help - эта справка\n\n" +
			"Выполненная задача даёт XP и продлевает серию 🔥\n" +
			"Пропуск серию обнуляет - но не прогресс."), nil
}
