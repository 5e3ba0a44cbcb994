package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskFallback_PairProgress(t *testing.T) {
	draft := parseTaskFallback("Прочитать 3 из 10 глав")

	require.NotNil(t, draft.CurrentProgress)
	require.NotNil(t, draft.TargetProgress)
	assert.Equal(t, 3.0, *draft.CurrentProgress)
	assert.Equal(t, 10.0, *draft.TargetProgress)
}

func TestParseTaskFallback_SlashProgress(t *testing.T) {
	draft := parseTaskFallback("Отжимания 15/50")

	require.NotNil(t, draft.CurrentProgress)
	require.NotNil(t, draft.TargetProgress)
	assert.Equal(t, 15.0, *draft.CurrentProgress)
	assert.Equal(t, 50.0, *draft.TargetProgress)
}

func TestParseTaskFallback_CurrentOnly(t *testing.T) {
	draft := parseTaskFallback("Набрать подписчиков, я на 1500")

	require.NotNil(t, draft.CurrentProgress)
	assert.Equal(t, 1500.0, *draft.CurrentProgress)
	assert.Nil(t, draft.TargetProgress)
}

func TestParseTaskFallback_GoalPattern(t *testing.T) {
	draft := parseTaskFallback("Блог, цель: 5000")

	require.NotNil(t, draft.TargetProgress)
	assert.Equal(t, 5000.0, *draft.TargetProgress)
	require.NotNil(t, draft.CurrentProgress)
	assert.Equal(t, 0.0, *draft.CurrentProgress)
}

func TestParseTaskFallback_TitleCleanup(t *testing.T) {
	draft := parseTaskFallback("добавь пробежка в парке")
	assert.Equal(t, "пробежка в парке", draft.Title)

	draft = parseTaskFallback("Подписчики, я на 1500 уже")
	assert.Equal(t, "Подписчики,", draft.Title)
}

func TestParseTaskFallback_PlainText(t *testing.T) {
	draft := parseTaskFallback("Позвонить маме")

	assert.Equal(t, "Позвонить маме", draft.Title)
	assert.Nil(t, draft.CurrentProgress)
	assert.Nil(t, draft.TargetProgress)
	assert.Nil(t, draft.Deadline)
}

func TestCategorizeByKeywords(t *testing.T) {
	available := []string{"Работа", "Тренировки", "Блог", "Чтение"}

	tests := []struct {
		text string
		want string
	}{
		{"Сделать кардио в зале", "Тренировки"},
		{"Написать пост для блога", "Блог"},
		{"Дочитать книгу", "Чтение"},
		{"Созвон с клиентом", "Работа"},
		{"Что-то совсем другое", "Работа"},
	}

	for _, tt := range tests {
		got := categorizeByKeywords(tt.text, available)
		assert.Equal(t, tt.want, got, "text: %s", tt.text)
	}
}

func TestCategorizeByKeywords_NoWorkCategory(t *testing.T) {
	got := categorizeByKeywords("Что-то другое", []string{"Чтение", "Лайвы"})
	assert.Equal(t, "Чтение", got)
}

func TestCannedMotivation(t *testing.T) {
	assert.Contains(t, motivationCompleted, cannedMotivation(true))
	assert.Contains(t, motivationMissed, cannedMotivation(false))
}

func TestAssistant_DisabledClientUsesFallbacks(t *testing.T) {
	assistant := NewAssistant(NewClient(DefaultClientConfig("")))
	ctx := context.Background()

	draft := assistant.ParseTask(ctx, "Отжимания 10/100")
	require.NotNil(t, draft.TargetProgress)
	assert.Equal(t, 100.0, *draft.TargetProgress)

	category := assistant.CategorizeTask(ctx, "кардио в зале", []string{"Работа", "Тренировки"})
	assert.Equal(t, "Тренировки", category)

	msg := assistant.Motivation(ctx, true, "пробежка", 3)
	assert.NotEmpty(t, msg)
}
