package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANT
// Высокоуровневые операции коуча: разбор текста задачи, категоризация,
// мотивационные сообщения. Без API-ключа работают детерминированные
// запасные варианты.
// ══════════════════════════════════════════════════════════════════════════════

// TaskDraft is the parse result for a free-form task description.
type TaskDraft struct {
	Title           string
	CurrentProgress *float64
	TargetProgress  *float64
	Deadline        *time.Time
}

// Assistant wraps the Client with coach-level operations.
type Assistant struct {
	client *Client
}

// NewAssistant creates a new Assistant.
func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

// ParseTask extracts a task draft from free-form text. API failures and
// unparseable model output fall back to regex parsing.
func (a *Assistant) ParseTask(ctx context.Context, text string) TaskDraft {
	if !a.client.Enabled() {
		return parseTaskFallback(text)
	}

	prompt := fmt.Sprintf(`Проанализируй следующую задачу и извлеки информацию в формате JSON:
{
    "title": "краткое название задачи",
    "current_progress": число или null,
    "target_progress": число или null,
    "deadline": "дата в формате YYYY-MM-DD или null"
}

Задача: "%s"

Верни ТОЛЬКО JSON, без дополнительного текста.`, text)

	content, err := a.client.complete(ctx,
		"Ты помощник для парсинга задач. Отвечай только валидным JSON.",
		prompt, 0.3, 200)
	if err != nil {
		a.client.logger.Warn("task parse via api failed, using fallback", "error", err)
		return parseTaskFallback(text)
	}

	var parsed struct {
		Title           string   `json:"title"`
		CurrentProgress *float64 `json:"current_progress"`
		TargetProgress  *float64 `json:"target_progress"`
		Deadline        *string  `json:"deadline"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		a.client.logger.Warn("task parse returned invalid json, using fallback", "error", err)
		return parseTaskFallback(text)
	}

	draft := TaskDraft{
		Title:           strings.TrimSpace(parsed.Title),
		CurrentProgress: parsed.CurrentProgress,
		TargetProgress:  parsed.TargetProgress,
	}
	if draft.Title == "" {
		draft.Title = strings.TrimSpace(text)
	}
	if parsed.Deadline != nil {
		if d, err := time.Parse("2006-01-02", *parsed.Deadline); err == nil {
			draft.Deadline = &d
		}
	}
	return draft
}

// CategorizeTask picks the best category name for the task text. Unknown
// or failed responses fall back to keyword matching.
func (a *Assistant) CategorizeTask(ctx context.Context, text string, categories []string) string {
	if !a.client.Enabled() {
		return categorizeByKeywords(text, categories)
	}

	prompt := fmt.Sprintf(`Определи категорию для следующей задачи.
Доступные категории: %s

Задача: "%s"

Верни ТОЛЬКО название категории, без дополнительных объяснений.`,
		strings.Join(categories, ", "), text)

	content, err := a.client.complete(ctx,
		"Ты помощник для категоризации задач. Отвечай только названием категории.",
		prompt, 0.3, 50)
	if err != nil {
		a.client.logger.Warn("categorization via api failed, using fallback", "error", err)
		return categorizeByKeywords(text, categories)
	}

	content = strings.TrimSpace(content)
	for _, c := range categories {
		if c == content {
			return c
		}
	}
	// Model answered with something close - accept a substring match.
	lower := strings.ToLower(content)
	for _, c := range categories {
		cl := strings.ToLower(c)
		if strings.Contains(lower, cl) || strings.Contains(cl, lower) {
			return c
		}
	}
	return categorizeByKeywords(text, categories)
}

// Motivation returns a short motivational message for a task outcome.
func (a *Assistant) Motivation(ctx context.Context, completed bool, taskTitle string, level int) string {
	if !a.client.Enabled() {
		return cannedMotivation(completed)
	}

	var prompt string
	if completed {
		prompt = fmt.Sprintf(`Сгенерируй короткое мотивационное сообщение (1-2 предложения), дерзкое и живое, для пользователя уровня %d, который только что выполнил задачу "%s". Верни ТОЛЬКО текст сообщения, без кавычек.`, level, taskTitle)
	} else {
		prompt = fmt.Sprintf(`Сгенерируй короткое мотивационное сообщение (1-2 предложения), дерзкое и поддерживающее, для пользователя уровня %d, который не выполнил задачу "%s". Верни ТОЛЬКО текст сообщения, без кавычек.`, level, taskTitle)
	}

	content, err := a.client.complete(ctx,
		"Ты мотивационный коуч. Отвечай коротко и дерзко.",
		prompt, 0.8, 100)
	if err != nil {
		a.client.logger.Warn("motivation via api failed, using fallback", "error", err)
		return cannedMotivation(completed)
	}
	return content
}
