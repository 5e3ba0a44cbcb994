package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgclient "github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/telegram"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler/callback"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/middleware"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Жизненный цикл бота: регистрация маршрутов, long polling, разбор
// апдейтов и отправка ответов. Вся доменная работа - в обработчиках.
// ══════════════════════════════════════════════════════════════════════════════

// Handlers groups the command and callback handlers the bot routes to.
type Handlers struct {
	Start    *handler.StartHandler
	Add      *handler.AddHandler
	Tasks    *handler.TasksHandler
	Progress *handler.ProgressHandler
	Stats    *handler.StatsHandler
	Help     *handler.HelpCmdHandler
	Outcome  *callback.OutcomeHandler
}

// BotConfig contains bot configuration.
type BotConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger
}

// Bot is the Telegram bot: transport plus routing.
type Bot struct {
	client *tgclient.Client
	router *Router
	logger *slog.Logger

	handle middleware.Handler
}

// NewBot creates the bot and registers all routes.
func NewBot(client *tgclient.Client, handlers Handlers, cfg BotConfig) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &Bot{
		client: client,
		router: NewRouter(cfg.Logger),
		logger: cfg.Logger,
	}
	b.registerRoutes(handlers)

	b.handle = middleware.Chain(
		b.handleUpdate,
		middleware.Recovery(middleware.RecoveryConfig{
			Logger: cfg.Logger,
			Notify: func(ctx context.Context, chatID int64, text string) {
				if _, err := client.SendText(ctx, chatID, text); err != nil {
					cfg.Logger.Warn("failed to notify user about panic", "chat_id", chatID, "error", err)
				}
			},
		}),
	)

	return b
}

// Start runs long polling until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	// активный webhook блокирует getUpdates
	if err := b.client.DeleteWebhook(ctx, false); err != nil {
		b.logger.Warn("failed to delete webhook before polling", "error", err)
	}

	me, err := b.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe failed: %w", err)
	}
	b.logger.Info("bot started", "username", me.Username, "id", me.ID)

	return b.client.StartPolling(ctx, tgclient.UpdateHandler(b.handle))
}

// ─────────────────────────────────────────────────────────────────────────────
// ROUTES
// ─────────────────────────────────────────────────────────────────────────────

func (b *Bot) registerRoutes(h Handlers) {
	b.router.Command("start", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return h.Start.Handle(ctx, handler.StartRequest{
			TelegramID: c.TelegramID,
			Username:   c.Username,
			FirstName:  c.FirstName,
			ChatID:     c.ChatID,
		})
	})

	b.router.Command("add", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return h.Add.Handle(ctx, handler.AddRequest{
			TelegramID: c.TelegramID,
			ChatID:     c.ChatID,
			Text:       c.Args,
		})
	})

	b.router.Command("tasks", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return h.Tasks.Handle(ctx, handler.TasksRequest{TelegramID: c.TelegramID, ChatID: c.ChatID})
	})

	b.router.Command("progress", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return h.Progress.Handle(ctx, handler.ProgressRequest{TelegramID: c.TelegramID, ChatID: c.ChatID})
	})

	b.router.Command("stats", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return h.Stats.Handle(ctx, handler.StatsRequest{TelegramID: c.TelegramID, ChatID: c.ChatID})
	})

	b.router.Command("help", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return h.Help.Handle(ctx)
	})

	b.router.CallbackPrefix(presenter.CallbackPrefixComplete, func(ctx context.Context, c CallbackContext) (*handler.Response, error) {
		return h.Outcome.HandleComplete(ctx, callback.OutcomeRequest{
			TelegramID: c.TelegramID,
			ChatID:     c.ChatID,
			TaskID:     c.Payload,
		})
	})

	b.router.CallbackPrefix(presenter.CallbackPrefixMiss, func(ctx context.Context, c CallbackContext) (*handler.Response, error) {
		return h.Outcome.HandleMiss(ctx, callback.OutcomeRequest{
			TelegramID: c.TelegramID,
			ChatID:     c.ChatID,
			TaskID:     c.Payload,
		})
	})

	// кнопки-ярлыки команд на клавиатурах
	b.router.CallbackPrefix("cmd:", func(ctx context.Context, c CallbackContext) (*handler.Response, error) {
		return b.router.DispatchCommand(ctx, CommandContext{
			TelegramID: c.TelegramID,
			ChatID:     c.ChatID,
			MessageID:  c.MessageID,
			Command:    c.Payload,
		})
	})

	// свободный текст в личном чате - новая задача
	b.router.Text(func(ctx context.Context, c TextContext) (*handler.Response, error) {
		return h.Add.Handle(ctx, handler.AddRequest{
			TelegramID: c.TelegramID,
			ChatID:     c.ChatID,
			Text:       c.Text,
		})
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// UPDATE HANDLING
// ─────────────────────────────────────────────────────────────────────────────

func (b *Bot) handleUpdate(ctx context.Context, update *tgclient.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	default:
		return nil
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgclient.Message) error {
	if msg.From == nil || msg.From.IsBot {
		return nil
	}

	if cmd := tgclient.ExtractCommand(msg); cmd != "" {
		resp, err := b.router.DispatchCommand(ctx, CommandContext{
			TelegramID: msg.From.ID,
			ChatID:     msg.Chat.ID,
			MessageID:  msg.MessageID,
			Command:    cmd,
			Args:       tgclient.ExtractCommandArgs(msg),
			Username:   msg.From.Username,
			FirstName:  msg.From.FirstName,
		})
		if err != nil {
			return b.replyError(ctx, msg.Chat.ID, err)
		}
		return b.sendResponse(ctx, msg.Chat.ID, resp)
	}

	// свободный текст принимается только в личном чате
	if !tgclient.IsPrivateChat(msg) || msg.Text == "" {
		return nil
	}

	resp, err := b.router.DispatchText(ctx, TextContext{
		TelegramID: msg.From.ID,
		ChatID:     msg.Chat.ID,
		Text:       msg.Text,
	})
	if err != nil {
		return b.replyError(ctx, msg.Chat.ID, err)
	}
	return b.sendResponse(ctx, msg.Chat.ID, resp)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, cb *tgclient.CallbackQuery) error {
	// кнопка перестаёт «крутиться» независимо от исхода обработки
	defer func() {
		if err := b.client.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
			b.logger.Warn("failed to answer callback query", "callback_id", cb.ID, "error", err)
		}
	}()

	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID

	resp, err := b.router.DispatchCallback(ctx, CallbackContext{
		TelegramID: cb.From.ID,
		ChatID:     chatID,
		MessageID:  cb.Message.MessageID,
		CallbackID: cb.ID,
		Data:       cb.Data,
	})
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}
	return b.sendResponse(ctx, chatID, resp)
}

// ─────────────────────────────────────────────────────────────────────────────
// SENDING
// ─────────────────────────────────────────────────────────────────────────────

func (b *Bot) sendResponse(ctx context.Context, chatID int64, resp *handler.Response) error {
	if resp == nil || resp.Text == "" {
		return nil
	}

	params := tgclient.SendMessageParams{
		ChatID:      chatID,
		Text:        resp.Text,
		ParseMode:   resp.ParseMode,
		ReplyMarkup: toMarkup(resp.Keyboard),
	}
	if _, err := b.client.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("telegram: send response: %w", err)
	}
	return nil
}

// replyError логирует ошибку обработчика и отвечает пользователю
// нейтральным сообщением; сам polling продолжается.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) error {
	b.logger.Error("handler failed", "chat_id", chatID, "error", err)

	if _, sendErr := b.client.SendText(ctx, chatID, "Не получилось обработать запрос 😔 Попробуй ещё раз."); sendErr != nil {
		b.logger.Warn("failed to send error reply", "chat_id", chatID, "error", sendErr)
	}
	return nil
}

// toMarkup converts a presenter keyboard to the wire format.
func toMarkup(kb *presenter.InlineKeyboard) *tgclient.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	rows := make([][]tgclient.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgclient.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgclient.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			})
		}
		rows = append(rows, buttons)
	}
	return &tgclient.InlineKeyboardMarkup{InlineKeyboard: rows}
}
