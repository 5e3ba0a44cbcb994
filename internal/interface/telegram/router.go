// Package telegram wires command and callback handlers to the bot
// transport: routing, polling lifecycle, response sending.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Маршрутизация апдейтов: команды по имени, callback-и по самому
// длинному совпавшему префиксу, свободный текст - отдельным
// обработчиком.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext carries the parsed command data to a route.
type CommandContext struct {
	TelegramID int64
	ChatID     int64
	MessageID  int64

	// Command is the command name without the leading slash.
	Command string

	// Args is everything after the command.
	Args string

	Username  string
	FirstName string
}

// CallbackContext carries the parsed callback query data to a route.
type CallbackContext struct {
	TelegramID int64
	ChatID     int64
	MessageID  int64

	// CallbackID answers the query.
	CallbackID string

	// Data is the full callback payload; Payload is Data without the
	// matched prefix.
	Data    string
	Payload string
}

// TextContext carries free-form text input to a route.
type TextContext struct {
	TelegramID int64
	ChatID     int64

	Text string
}

// CommandFunc handles one command.
type CommandFunc func(ctx context.Context, cmdCtx CommandContext) (*handler.Response, error)

// CallbackFunc handles callbacks under one prefix.
type CallbackFunc func(ctx context.Context, cbCtx CallbackContext) (*handler.Response, error)

// TextFunc handles free-form text messages.
type TextFunc func(ctx context.Context, txtCtx TextContext) (*handler.Response, error)

// Router dispatches updates to registered routes.
type Router struct {
	mu sync.RWMutex

	commands  map[string]CommandFunc
	callbacks map[string]CallbackFunc
	textInput TextFunc

	logger *slog.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		commands:  make(map[string]CommandFunc),
		callbacks: make(map[string]CallbackFunc),
		logger:    logger,
	}
}

// Command registers a command route. Name is without the slash.
func (r *Router) Command(name string, fn CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(name)] = fn
}

// CallbackPrefix registers a callback route for data starting with prefix.
func (r *Router) CallbackPrefix(prefix string, fn CallbackFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[prefix] = fn
}

// Text registers the free-form text route.
func (r *Router) Text(fn TextFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textInput = fn
}

// DispatchCommand routes a command to its handler.
func (r *Router) DispatchCommand(ctx context.Context, cmdCtx CommandContext) (*handler.Response, error) {
	r.mu.RLock()
	fn, ok := r.commands[strings.ToLower(cmdCtx.Command)]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("unknown command", "command", cmdCtx.Command, "telegram_id", cmdCtx.TelegramID)
		return handler.HTML("Не знаю такую команду 🤔\n\nСписок команд: /help"), nil
	}
	return fn(ctx, cmdCtx)
}

// DispatchCallback routes a callback by its longest matching prefix.
func (r *Router) DispatchCallback(ctx context.Context, cbCtx CallbackContext) (*handler.Response, error) {
	r.mu.RLock()
	var matchedPrefix string
	var matched CallbackFunc
	for prefix, fn := range r.callbacks {
		if strings.HasPrefix(cbCtx.Data, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			matched = fn
		}
	}
	r.mu.RUnlock()

	if matched == nil {
		r.logger.Debug("unknown callback", "data", cbCtx.Data, "telegram_id", cbCtx.TelegramID)
		return nil, nil
	}

	cbCtx.Payload = strings.TrimPrefix(cbCtx.Data, matchedPrefix)
	return matched(ctx, cbCtx)
}

// DispatchText routes free-form text. Without a registered route the
// message is ignored.
func (r *Router) DispatchText(ctx context.Context, txtCtx TextContext) (*handler.Response, error) {
	r.mu.RLock()
	fn := r.textInput
	r.mu.RUnlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, txtCtx)
}
