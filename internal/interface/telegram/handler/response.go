// Package handler contains Telegram command handlers.
package handler

import (
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// Response is what a handler wants sent back to the chat.
type Response struct {
	// Text is the message text (HTML formatted).
	Text string

	// Keyboard is the inline keyboard to attach, if any.
	Keyboard *presenter.InlineKeyboard

	// ParseMode is the parse mode; empty means plain text.
	ParseMode string
}

// HTML creates an HTML-formatted response.
func HTML(text string) *Response {
	return &Response{Text: text, ParseMode: "HTML"}
}

// HTMLWithKeyboard creates an HTML-formatted response with a keyboard.
func HTMLWithKeyboard(text string, kb *presenter.InlineKeyboard) *Response {
	return &Response{Text: text, Keyboard: kb, ParseMode: "HTML"}
}

// notRegisteredResponse просит пользователя начать со /start.
func notRegisteredResponse() *Response {
	return HTML("Мы ещё не знакомы 👋\n\nНажми /start, чтобы начать.")
}
