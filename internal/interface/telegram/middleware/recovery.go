// Package middleware contains Telegram bot middlewares for update processing.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	tgclient "github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Перехватывает паники обработчиков: пользователь получает вежливое
// сообщение, стек уходит в лог, бот продолжает работать.
// ══════════════════════════════════════════════════════════════════════════════

// Handler processes a single Telegram update.
type Handler func(ctx context.Context, update *tgclient.Update) error

// Middleware wraps a Handler with additional behavior.
type Middleware func(next Handler) Handler

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// Logger for panic reports. Required.
	Logger *slog.Logger

	// Notify sends the apology message to the chat. Optional.
	Notify func(ctx context.Context, chatID int64, text string)

	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string
}

// DefaultUserErrorMessage is shown when a handler panics.
const DefaultUserErrorMessage = "😔 Что-то пошло не так.\n\n" +
	"Попробуй ещё раз через пару минут."

// Recovery returns a middleware that recovers handler panics.
func Recovery(cfg RecoveryConfig) Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.UserErrorMessage == "" {
		cfg.UserErrorMessage = DefaultUserErrorMessage
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, update *tgclient.Update) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				cfg.Logger.Error("handler panic recovered",
					"panic", fmt.Sprintf("%v", r),
					"update_id", update.UpdateID,
					"stack", string(debug.Stack()),
				)

				if chatID, ok := chatIDFromUpdate(update); ok && cfg.Notify != nil {
					cfg.Notify(ctx, chatID, cfg.UserErrorMessage)
				}
				err = fmt.Errorf("handler panic: %v", r)
			}()

			return next(ctx, update)
		}
	}
}

// Chain composes middlewares around a handler, first listed outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func chatIDFromUpdate(update *tgclient.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, false
	}
}
