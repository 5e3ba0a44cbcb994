package handler

import (
	"context"
	"fmt"
	"html"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Обрабатывает /start: регистрирует пользователя и показывает
// приветствие. Повторный /start - идемпотентное «с возвращением».
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler handles the /start command.
type StartHandler struct {
	register  *command.RegisterUserHandler
	keyboards *presenter.KeyboardBuilder
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(register *command.RegisterUserHandler, keyboards *presenter.KeyboardBuilder) *StartHandler {
	return &StartHandler{
		register:  register,
		keyboards: keyboards,
	}
}

// StartRequest contains the parsed /start command data.
type StartRequest struct {
	TelegramID int64
	Username   string
	FirstName  string
	ChatID     int64
}

// Handle processes the /start command.
func (h *StartHandler) Handle(ctx context.Context, req StartRequest) (*Response, error) {
	result, err := h.register.Handle(ctx, command.RegisterUserCommand{
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
	})
	if err != nil {
		return nil, err
	}

	name := html.EscapeString(result.User.DisplayName())

	if !result.Created {
		text := fmt.Sprintf(
			"С возвращением, %s! 👋\n\n"+
				"⭐ Уровень %d · ✨ %d XP\n\n"+
				"Напиши задачу текстом или выбери действие ниже.",
			name, int(result.User.Level), int(result.User.XP))
		return HTMLWithKeyboard(text, h.keyboards.WelcomeKeyboard()), nil
	}

	text := fmt.Sprintf(
		"Привет, %s! 👋\n\n"+
			"Я твой игровой коуч по задачам:\n"+
			"• пиши задачи обычным текстом - я разберу цель и срок\n"+
			"• отмечай выполнение и получай XP, уровни и достижения\n"+
			"• держи серию: каждый день с выполненной задачей её продлевает 🔥\n\n"+
			"Команды: /add /tasks /progress /stats /help",
		name)
	return HTMLWithKeyboard(text, h.keyboards.WelcomeKeyboard()), nil
}
