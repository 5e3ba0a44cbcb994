// Package presenter formats data for Telegram display.
// Presenters convert query results and command outcomes into
// HTML-formatted messages and inline keyboards; the bot layer
// translates these library-agnostic keyboards into API payloads.
package presenter

import (
	"fmt"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// INLINE KEYBOARD TYPES
// Library-agnostic keyboard representation. The Telegram transport
// converts these to its own wire types before sending.
// ══════════════════════════════════════════════════════════════════════════════

// InlineKeyboard represents an inline keyboard.
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton represents a single inline button.
type InlineButton struct {
	// Text is the button text.
	Text string

	// CallbackData is the callback data (for callback buttons).
	CallbackData string

	// URL is the URL to open (for URL buttons).
	URL string
}

// NewInlineKeyboard creates a new empty inline keyboard.
func NewInlineKeyboard() *InlineKeyboard {
	return &InlineKeyboard{
		Rows: make([][]InlineButton, 0),
	}
}

// AddRow adds a row of buttons.
func (k *InlineKeyboard) AddRow(buttons ...InlineButton) *InlineKeyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// CallbackButton creates a callback button.
func CallbackButton(text, callbackData string) InlineButton {
	return InlineButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARD BUILDER
// ══════════════════════════════════════════════════════════════════════════════

// Callback data prefixes understood by the callback router.
const (
	CallbackPrefixComplete = "complete:"
	CallbackPrefixMiss     = "miss:"
)

// maxButtonTitleLen ограничивает подпись кнопки, чтобы длинные
// названия задач не растягивали клавиатуру.
const maxButtonTitleLen = 24

// KeyboardBuilder builds inline keyboards for various handlers.
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder.
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// TaskOutcomeKeyboard строит клавиатуру списка задач: по строке на
// задачу с кнопками выполнения и пропуска.
func (b *KeyboardBuilder) TaskOutcomeKeyboard(groups []query.TaskGroup) *InlineKeyboard {
	kb := NewInlineKeyboard()
	for _, g := range groups {
		for _, t := range g.Tasks {
			kb.AddRow(
				CallbackButton("✅ "+truncate(t.Title, maxButtonTitleLen), CallbackPrefixComplete+t.ID),
				CallbackButton("❌", CallbackPrefixMiss+t.ID),
			)
		}
	}
	return kb
}

// AfterOutcomeKeyboard предлагает следующий шаг после отметки исхода.
func (b *KeyboardBuilder) AfterOutcomeKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("📋 Мои задачи", "cmd:tasks"),
			CallbackButton("🎮 Прогресс", "cmd:progress"),
		)
}

// WelcomeKeyboard creates the keyboard shown after /start.
func (b *KeyboardBuilder) WelcomeKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("📋 Мои задачи", "cmd:tasks"),
			CallbackButton("🎮 Прогресс", "cmd:progress"),
		).
		AddRow(
			CallbackButton("📊 Статистика", "cmd:stats"),
		)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return fmt.Sprintf("%s…", string(runes[:limit-1]))
}
