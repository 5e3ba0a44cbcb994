package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler"
)

func TestRouter_DispatchCommand(t *testing.T) {
	r := NewRouter(nil)

	var got CommandContext
	r.Command("tasks", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		got = c
		return handler.HTML("ok"), nil
	})

	resp, err := r.DispatchCommand(context.Background(), CommandContext{
		TelegramID: 42,
		ChatID:     100,
		Command:    "TASKS", // регистр команды не важен
		Args:       "extra",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, int64(42), got.TelegramID)
	assert.Equal(t, "extra", got.Args)
}

func TestRouter_DispatchCommand_Unknown(t *testing.T) {
	r := NewRouter(nil)

	resp, err := r.DispatchCommand(context.Background(), CommandContext{Command: "frobnicate"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Text, "/help")
}

func TestRouter_DispatchCallback_LongestPrefix(t *testing.T) {
	r := NewRouter(nil)

	r.CallbackPrefix("complete:", func(ctx context.Context, c CallbackContext) (*handler.Response, error) {
		return handler.HTML("complete " + c.Payload), nil
	})
	r.CallbackPrefix("complete:all:", func(ctx context.Context, c CallbackContext) (*handler.Response, error) {
		return handler.HTML("complete-all " + c.Payload), nil
	})

	resp, err := r.DispatchCallback(context.Background(), CallbackContext{Data: "complete:task-7"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "complete task-7", resp.Text)

	resp, err = r.DispatchCallback(context.Background(), CallbackContext{Data: "complete:all:today"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "complete-all today", resp.Text)
}

func TestRouter_DispatchCallback_Unknown(t *testing.T) {
	r := NewRouter(nil)

	resp, err := r.DispatchCallback(context.Background(), CallbackContext{Data: "nope:1"})
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestRouter_DispatchText(t *testing.T) {
	r := NewRouter(nil)

	// без зарегистрированного маршрута текст игнорируется
	resp, err := r.DispatchText(context.Background(), TextContext{Text: "hi"})
	require.NoError(t, err)
	assert.Nil(t, resp)

	r.Text(func(ctx context.Context, c TextContext) (*handler.Response, error) {
		return handler.HTML("task: " + c.Text), nil
	})

	resp, err = r.DispatchText(context.Background(), TextContext{TelegramID: 1, Text: "выучить песню"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "task: выучить песню", resp.Text)
}
